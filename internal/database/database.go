// Package database persists observed soundings so trajectories can be
// recomputed against them later. Two backends are available: a SQLite
// file for single-node deployments and PostgreSQL for shared ones.
package database

import (
	"context"
	"errors"
	"time"

	"github.com/aeharding/skewt/pkg/parcel"
)

// ErrNotFound reports that no sounding exists with the requested ID
var ErrNotFound = errors.New("database: sounding not found")

// Level is one observed level of a stored sounding
type Level struct {
	Pressure    float64 `json:"pressure"`
	Height      float64 `json:"height"`
	Temperature float64 `json:"temperature"`
}

// Sounding is a stored vertical profile
type Sounding struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ObservedAt time.Time `json:"observedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	Levels     []Level   `json:"levels"`
}

// Summary is a sounding listing entry without level data
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ObservedAt time.Time `json:"observedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	LevelCount int       `json:"levelCount"`
}

// Profile converts the stored levels into the integrator's sounding form
func (s *Sounding) Profile() parcel.Sounding {
	out := parcel.Sounding{
		Pressure:    make([]float64, len(s.Levels)),
		Height:      make([]float64, len(s.Levels)),
		Temperature: make([]float64, len(s.Levels)),
	}
	for i, l := range s.Levels {
		out.Pressure[i] = l.Pressure
		out.Height[i] = l.Height
		out.Temperature[i] = l.Temperature
	}
	return out
}

// Store is the interface implemented by sounding archive backends
type Store interface {
	// SaveSounding stores a sounding, assigning an ID if one is not set
	SaveSounding(ctx context.Context, s *Sounding) error
	// GetSounding fetches a sounding with its levels; ErrNotFound if absent
	GetSounding(ctx context.Context, id string) (*Sounding, error)
	// ListSoundings returns summaries of all stored soundings, newest first
	ListSoundings(ctx context.Context) ([]Summary, error)
	// Close releases the underlying connection
	Close() error
}
