package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aeharding/skewt/internal/log"
)

// soundingRecord is the GORM model for a stored sounding
type soundingRecord struct {
	ID         string    `gorm:"primaryKey;column:id"`
	Name       string    `gorm:"column:name;not null"`
	ObservedAt time.Time `gorm:"column:observed_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`

	Levels []levelRecord `gorm:"foreignKey:SoundingID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for soundingRecord
func (soundingRecord) TableName() string {
	return "soundings"
}

// levelRecord is the GORM model for one level of a stored sounding
type levelRecord struct {
	SoundingID  string  `gorm:"primaryKey;column:sounding_id"`
	Idx         int     `gorm:"primaryKey;column:idx"`
	Pressure    float64 `gorm:"column:pressure;not null"`
	Height      float64 `gorm:"column:height;not null"`
	Temperature float64 `gorm:"column:temperature;not null"`
}

// TableName specifies the table name for levelRecord
func (levelRecord) TableName() string {
	return "sounding_levels"
}

// PostgresStore implements Store over a PostgreSQL database via GORM
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to PostgreSQL and migrates the schema
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to create a PostgreSQL connection: %w", err)
	}

	if err := db.AutoMigrate(&soundingRecord{}, &levelRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// SaveSounding stores a sounding and its levels
func (p *PostgresStore) SaveSounding(ctx context.Context, snd *Sounding) error {
	if snd.ID == "" {
		snd.ID = uuid.New().String()
	}
	if snd.CreatedAt.IsZero() {
		snd.CreatedAt = time.Now().UTC()
	}

	rec := soundingRecord{
		ID:         snd.ID,
		Name:       snd.Name,
		ObservedAt: snd.ObservedAt,
		CreatedAt:  snd.CreatedAt,
		Levels:     make([]levelRecord, len(snd.Levels)),
	}
	for i, l := range snd.Levels {
		rec.Levels[i] = levelRecord{
			SoundingID:  snd.ID,
			Idx:         i,
			Pressure:    l.Pressure,
			Height:      l.Height,
			Temperature: l.Temperature,
		}
	}

	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to insert sounding: %w", err)
	}
	return nil
}

// GetSounding fetches a sounding and its levels by ID
func (p *PostgresStore) GetSounding(ctx context.Context, id string) (*Sounding, error) {
	var rec soundingRecord
	err := p.db.WithContext(ctx).
		Preload("Levels", func(db *gorm.DB) *gorm.DB { return db.Order("idx") }).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sounding: %w", err)
	}

	snd := &Sounding{
		ID:         rec.ID,
		Name:       rec.Name,
		ObservedAt: rec.ObservedAt,
		CreatedAt:  rec.CreatedAt,
		Levels:     make([]Level, len(rec.Levels)),
	}
	for i, l := range rec.Levels {
		snd.Levels[i] = Level{Pressure: l.Pressure, Height: l.Height, Temperature: l.Temperature}
	}
	return snd, nil
}

// ListSoundings returns summaries of all stored soundings, newest first
func (p *PostgresStore) ListSoundings(ctx context.Context) ([]Summary, error) {
	var summaries []Summary
	err := p.db.WithContext(ctx).
		Model(&soundingRecord{}).
		Select("soundings.id, soundings.name, soundings.observed_at, soundings.created_at, COUNT(sounding_levels.sounding_id) AS level_count").
		Joins("LEFT JOIN sounding_levels ON sounding_levels.sounding_id = soundings.id").
		Group("soundings.id").
		Order("soundings.created_at DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query soundings: %w", err)
	}
	return summaries, nil
}

// Close closes the underlying connection pool
func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
