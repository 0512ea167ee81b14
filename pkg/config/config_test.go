package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestYAMLProviderLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
http:
  listen_addr: 127.0.0.1
  port: 9090
database:
  sqlite_path: /tmp/test.db
parcel:
  default_steps: 100
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewYAMLProvider(path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.ListenAddr != "127.0.0.1" || cfg.HTTP.Port != 9090 {
		t.Errorf("HTTP config = %+v", cfg.HTTP)
	}
	if cfg.Database.SQLitePath != "/tmp/test.db" {
		t.Errorf("SQLitePath = %q", cfg.Database.SQLitePath)
	}
	if cfg.Parcel.DefaultSteps != 100 {
		t.Errorf("DefaultSteps = %d", cfg.Parcel.DefaultSteps)
	}
}

func TestYAMLProviderDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewYAMLProvider(path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.ListenAddr != "0.0.0.0" {
		t.Errorf("ListenAddr default = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("Port default = %d", cfg.HTTP.Port)
	}
	if cfg.Database.SQLitePath != "skewt.db" {
		t.Errorf("SQLitePath default = %q", cfg.Database.SQLitePath)
	}
	if cfg.Parcel.DefaultSteps != 40 {
		t.Errorf("DefaultSteps default = %d", cfg.Parcel.DefaultSteps)
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	if _, err := NewYAMLProvider("/nonexistent/config.yaml").LoadConfig(); err == nil {
		t.Error("expected error for missing file")
	}
}
