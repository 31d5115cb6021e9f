package db

import (
	"fmt"
	"log"

	"provamark/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

// NewStore connects to postgres when a DSN is configured; without one the
// service runs in no-db mode and keeps audit events in memory only.
func NewStore(cfg config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		log.Printf("POSTGRES_DSN not set; starting in no-db mode.")
		return &Store{DB: nil}, nil
	}

	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &Store{DB: gdb}, nil
}

func (s *Store) AutoMigrate() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.AutoMigrate(&AuditEventModel{})
}
