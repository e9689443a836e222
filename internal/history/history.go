// Package history records completion calls for later inspection. It is an
// optional audit trail: recording failures are logged by callers and never
// affect the user-facing flow.
package history

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"promptforge/pkg/ai"
)

// Stage names recorded with each completion.
const (
	StageEnhance  = "enhance"
	StageGenerate = "generate"
)

// Record is one completion call, successful or not.
type Record struct {
	ID          string
	SessionID   string
	Stage       string
	Provider    string
	Model       string
	Temperature float64
	Messages    []ai.Message
	Response    string
	ErrorDetail string
	CreatedAt   time.Time
}

// Store persists completion records.
type Store interface {
	Append(Record) error
	ListBySession(sessionID string, limit int) ([]Record, error)
}

// CompletionModel is the GORM model backing Record.
type CompletionModel struct {
	ID          string `gorm:"primaryKey"`
	SessionID   string `gorm:"not null;index"`
	Stage       string `gorm:"not null"`
	Provider    string `gorm:"not null"`
	Model       string `gorm:"not null"`
	Temperature float64
	Messages    datatypes.JSON `gorm:"not null"`
	Response    string
	ErrorDetail string
	CreatedAt   time.Time `gorm:"not null;index"`
}

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&CompletionModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Append stores one completion record.
func (s *GormStore) Append(rec Record) error {
	model, err := toModel(rec)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// ListBySession returns the most recent records for a session, newest first.
func (s *GormStore) ListBySession(sessionID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []CompletionModel
	err := s.db.
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(models))
	for _, m := range models {
		rec, err := fromModel(m)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func toModel(rec Record) (CompletionModel, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	messages, err := json.Marshal(rec.Messages)
	if err != nil {
		return CompletionModel{}, fmt.Errorf("encode messages: %w", err)
	}
	return CompletionModel{
		ID:          rec.ID,
		SessionID:   rec.SessionID,
		Stage:       rec.Stage,
		Provider:    rec.Provider,
		Model:       rec.Model,
		Temperature: rec.Temperature,
		Messages:    datatypes.JSON(messages),
		Response:    rec.Response,
		ErrorDetail: rec.ErrorDetail,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

func fromModel(m CompletionModel) (Record, error) {
	var messages []ai.Message
	if len(m.Messages) > 0 {
		if err := json.Unmarshal(m.Messages, &messages); err != nil {
			return Record{}, fmt.Errorf("decode messages: %w", err)
		}
	}
	return Record{
		ID:          m.ID,
		SessionID:   m.SessionID,
		Stage:       m.Stage,
		Provider:    m.Provider,
		Model:       m.Model,
		Temperature: m.Temperature,
		Messages:    messages,
		Response:    m.Response,
		ErrorDetail: m.ErrorDetail,
		CreatedAt:   m.CreatedAt,
	}, nil
}
