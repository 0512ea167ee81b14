// Package config defines the service configuration and the providers
// that load it.
package config

// Provider is the interface for configuration backends
type Provider interface {
	LoadConfig() (*Config, error)
}

// Config is the complete service configuration
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Parcel   ParcelConfig   `yaml:"parcel"`
}

// HTTPConfig configures the REST server
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Port       int    `yaml:"port"`
}

// DatabaseConfig selects and configures the sounding archive backend.
// When PostgresDSN is set the archive uses PostgreSQL; otherwise it
// uses the SQLite file at SQLitePath.
type DatabaseConfig struct {
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// ParcelConfig holds defaults for trajectory computation
type ParcelConfig struct {
	DefaultSteps int `yaml:"default_steps"`
}

// applyDefaults fills in unset fields
func (c *Config) applyDefaults() {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = "0.0.0.0"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Database.SQLitePath == "" && c.Database.PostgresDSN == "" {
		c.Database.SQLitePath = "skewt.db"
	}
	if c.Parcel.DefaultSteps == 0 {
		c.Parcel.DefaultSteps = 40
	}
}
