package postgres

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "url only", cfg: Config{DatabaseURL: "postgres://u:p@localhost:5432/props"}},
		{name: "missing url", cfg: Config{}, wantErr: true},
		{name: "negative max", cfg: Config{DatabaseURL: "postgres://localhost/props", MaxConns: -1}, wantErr: true},
		{name: "min above max", cfg: Config{DatabaseURL: "postgres://localhost/props", MaxConns: 2, MinConns: 5}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_PoolConfigOverrides(t *testing.T) {
	cfg := Config{
		DatabaseURL:     "postgres://u:p@localhost:5432/props?sslmode=disable",
		MaxConns:        7,
		MinConns:        2,
		MaxConnLifetime: time.Minute,
		ConnectTimeout:  3 * time.Second,
	}
	pc, err := cfg.poolConfig()
	if err != nil {
		t.Fatal(err)
	}
	if pc.MaxConns != 7 || pc.MinConns != 2 || pc.MaxConnLifetime != time.Minute || pc.ConnConfig.ConnectTimeout != 3*time.Second {
		t.Errorf("overrides not applied: max=%d min=%d lifetime=%v timeout=%v",
			pc.MaxConns, pc.MinConns, pc.MaxConnLifetime, pc.ConnConfig.ConnectTimeout)
	}
	if pc.ConnConfig.Database != "props" {
		t.Errorf("database = %q, want props", pc.ConnConfig.Database)
	}
}

func TestConfig_PoolConfigRejectsGarbage(t *testing.T) {
	if _, err := (Config{DatabaseURL: "postgres://u:p@localhost:notaport/db"}).poolConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}
