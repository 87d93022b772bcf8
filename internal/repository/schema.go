package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the DDL statements of the service, applied in order
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		water_intake INTEGER NOT NULL DEFAULT 0 CHECK (water_intake >= 0),
		water_date DATE NOT NULL DEFAULT CURRENT_DATE,
		notification_sound VARCHAR(50) NOT NULL DEFAULT '',
		notifications_enabled BOOLEAN NOT NULL DEFAULT true,
		points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
		level VARCHAR(20) NOT NULL DEFAULT 'Bronze',
		streak INTEGER NOT NULL DEFAULT 0 CHECK (streak >= 0),
		last_claim_date DATE,
		perfect_days INTEGER NOT NULL DEFAULT 0,
		perfect_medicine_days INTEGER NOT NULL DEFAULT 0,
		last_perfect_day DATE,
		last_perfect_medicine_day DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS water_date DATE NOT NULL DEFAULT CURRENT_DATE`,
	`CREATE TABLE IF NOT EXISTS medicines (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		dosage VARCHAR(255) NOT NULL DEFAULT '',
		time1 VARCHAR(5) NOT NULL DEFAULT '',
		time2 VARCHAR(5) NOT NULL DEFAULT '',
		time3 VARCHAR(5) NOT NULL DEFAULT '',
		taken1 BOOLEAN NOT NULL DEFAULT false,
		taken2 BOOLEAN NOT NULL DEFAULT false,
		taken3 BOOLEAN NOT NULL DEFAULT false,
		taken_at1 TIMESTAMPTZ,
		taken_at2 TIMESTAMPTZ,
		taken_at3 TIMESTAMPTZ,
		duration_days INTEGER NOT NULL CHECK (duration_days > 0),
		start_date DATE NOT NULL,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_medicines_user_id ON medicines(user_id)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id VARCHAR(255) NOT NULL,
		operation_type VARCHAR(20) NOT NULL,
		resource_type VARCHAR(50) NOT NULL,
		resource_id VARCHAR(255) NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		ip_address VARCHAR(64) NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		additional_data JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id, timestamp DESC)`,
}

// Migrate applies Schema to the database
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for i, statement := range Schema {
		if _, err := db.Exec(ctx, statement); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
