// Package audit records who changed which medicine or game state, and when
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
	OperationToggle OperationType = "TOGGLE"
	OperationReset  OperationType = "RESET"
	OperationClaim  OperationType = "CLAIM"
	OperationAward  OperationType = "AWARD"
	OperationExport OperationType = "EXPORT"
)

// ResourceType represents the type of resource being changed
type ResourceType string

const (
	ResourceMedicine    ResourceType = "medicine"
	ResourceUser        ResourceType = "user"
	ResourceReward      ResourceType = "daily_reward"
	ResourceAchievement ResourceType = "achievement"
	ResourceReport      ResourceType = "adherence_report"
)

// Entry is one audit log record
type Entry struct {
	UserID         string                 `json:"user_id"`
	OperationType  OperationType          `json:"operation_type"`
	ResourceType   ResourceType           `json:"resource_type"`
	ResourceID     string                 `json:"resource_id"`
	Timestamp      time.Time              `json:"timestamp"`
	IPAddress      string                 `json:"ip_address,omitempty"`
	UserAgent      string                 `json:"user_agent,omitempty"`
	AdditionalData map[string]interface{} `json:"additional_data,omitempty"`
}

// Recorder stores audit entries
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Logger writes audit entries to the audit_logs table and to the structured log
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewLogger creates a new audit logger
func NewLogger(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	return &Logger{
		db:     db,
		logger: logger,
	}
}

// Record stores an audit entry
func (l *Logger) Record(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.IPAddress == "" && entry.UserAgent == "" {
		client := ClientFrom(ctx)
		entry.IPAddress = client.IPAddress
		entry.UserAgent = client.UserAgent
	}

	l.logger.Info("audit",
		zap.String("user_id", entry.UserID),
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
	)

	query := `
		INSERT INTO audit_logs (
			user_id, operation_type, resource_type, resource_id,
			timestamp, ip_address, user_agent, additional_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := l.db.Exec(ctx, query,
		entry.UserID,
		entry.OperationType,
		entry.ResourceType,
		entry.ResourceID,
		entry.Timestamp,
		entry.IPAddress,
		entry.UserAgent,
		entry.AdditionalData,
	)
	if err != nil {
		l.logger.Error("failed to write audit log",
			zap.Error(err),
			zap.String("user_id", entry.UserID),
			zap.String("resource_type", string(entry.ResourceType)),
		)
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	return nil
}

// List returns the most recent audit entries for a user
func (l *Logger) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT user_id, operation_type, resource_type, resource_id,
		       timestamp, ip_address, user_agent, additional_data
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := l.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.UserID,
			&entry.OperationType,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.Timestamp,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.AdditionalData,
		); err != nil {
			l.logger.Error("failed to scan audit log", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit logs: %w", err)
	}

	return entries, nil
}

// Nop discards audit entries
type Nop struct{}

// Record implements Recorder
func (Nop) Record(ctx context.Context, entry Entry) error {
	return nil
}
