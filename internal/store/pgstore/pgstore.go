// Package pgstore keeps session snapshots in Postgres through gorm.
package pgstore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/teambot/internal/engine"
	apperrors "github.com/DoyleJ11/teambot/internal/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type sessionRecord struct {
	SessionID string `gorm:"primaryKey"`
	State     string `gorm:"not null"`
	Version   int    `gorm:"not null"`
	Payload   string `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (sessionRecord) TableName() string { return "team_sessions" }

type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return New(db)
}

// New migrates the snapshot table on db and returns a store over it.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate team_sessions: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts snapshots. A row is only replaced by a snapshot with an
// equal or higher version, so a late flush cannot roll a session back.
func (s *Store) Save(ctx context.Context, snaps []engine.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	records := make([]sessionRecord, 0, len(snaps))
	for _, snap := range snaps {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", snap.SessionID, err)
		}
		records = append(records, sessionRecord{
			SessionID: snap.SessionID,
			State:     string(snap.State),
			Version:   snap.Version,
			Payload:   string(data),
		})
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "version", "payload", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "team_sessions.version <= excluded.version"},
		}},
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("save %d sessions: %w", len(records), err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (engine.Snapshot, error) {
	var rec sessionRecord
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&rec).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return engine.Snapshot{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
	}
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("read session %s: %w", sessionID, err)
	}
	return decode(rec)
}

func (s *Store) LoadAll(ctx context.Context) ([]engine.Snapshot, error) {
	var recs []sessionRecord
	if err := s.db.WithContext(ctx).Order("session_id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]engine.Snapshot, 0, len(recs))
	for _, rec := range recs {
		snap, err := decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func decode(rec sessionRecord) (engine.Snapshot, error) {
	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(rec.Payload), &snap); err != nil {
		return engine.Snapshot{}, fmt.Errorf("decode session %s: %w", rec.SessionID, err)
	}
	return snap, nil
}
