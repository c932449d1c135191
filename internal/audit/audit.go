// Package audit records login attempts. Every attempt lands in the logs
// table and is mirrored as a structured local log line; neither write may
// fail the login request it describes.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/facegate/backend/internal/models"
)

// AttemptStore appends login log records. *database.LoginLogStore
// satisfies it.
type AttemptStore interface {
	PutAttempt(ctx context.Context, record *models.LoginLogRecord) error
}

type Logger struct {
	store AttemptStore
}

func NewLogger(store AttemptStore) *Logger {
	return &Logger{store: store}
}

// RecordSuccess appends a LOGIN_SUCCESS entry for the matched user.
func (l *Logger) RecordSuccess(ctx context.Context, faceID, userName string, confidence float64) {
	l.append(ctx, &models.LoginLogRecord{
		LogID:      uuid.NewString(),
		UserID:     faceID,
		UserName:   userName,
		Action:     models.ActionLoginSuccess,
		Confidence: strconv.FormatFloat(confidence, 'f', -1, 64),
		Timestamp:  time.Now().Format(time.RFC3339),
	})
}

// RecordFailure appends a LOGIN_FAILED entry with no user identity.
func (l *Logger) RecordFailure(ctx context.Context, reason string) {
	l.append(ctx, &models.LoginLogRecord{
		LogID:     uuid.NewString(),
		Action:    models.ActionLoginFailed,
		Timestamp: time.Now().Format(time.RFC3339),
		Reason:    reason,
	})
}

func (l *Logger) append(ctx context.Context, record *models.LoginLogRecord) {
	data, _ := json.Marshal(record)
	log.Printf("AUDIT: %s", data)

	if err := l.store.PutAttempt(ctx, record); err != nil {
		log.Printf("[AUDIT] Failed to write login log %s: %v", record.LogID, err)
	}
}
