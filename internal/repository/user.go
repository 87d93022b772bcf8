package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

const userColumns = `
	id, name, email, water_intake,
	notification_sound, notifications_enabled,
	points, level, streak, last_claim_date,
	perfect_days, perfect_medicine_days,
	last_perfect_day, last_perfect_medicine_day,
	created_at, updated_at`

// UserRepository manages user profiles and their game state
type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var level string
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.WaterIntake,
		&u.NotificationSound,
		&u.NotificationsEnabled,
		&u.Points,
		&level,
		&u.Streak,
		&u.LastClaimDate,
		&u.PerfectDays,
		&u.PerfectMedicineDays,
		&u.LastPerfectDay,
		&u.LastPerfectMedicineDay,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Level = model.Level(level)
	u.LastClaimDate = localDatePtr(u.LastClaimDate)
	u.LastPerfectDay = localDatePtr(u.LastPerfectDay)
	u.LastPerfectMedicineDay = localDatePtr(u.LastPerfectMedicineDay)
	return &u, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.Level == "" {
		u.Level = model.LevelBronze
	}

	query := `
		INSERT INTO users (id, name, email, notification_sound, notifications_enabled, level, water_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.NotificationSound,
		u.NotificationsEnabled,
		string(u.Level),
		model.DateOf(time.Now()),
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create user", zap.Error(err), zap.String("user_id", u.ID))
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		r.logger.Error("failed to find user", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return u, nil
}

// UpdateProfile writes the profile columns of the user. Game state is owned by UpdateGameState.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, p model.ProfileUpdate) error {
	query := `
		UPDATE users
		SET name = $1, email = $2,
		    notification_sound = $3, notifications_enabled = $4,
		    water_intake = COALESCE($5, water_intake),
		    water_date = CASE WHEN $5::int IS NULL THEN water_date ELSE $6::date END,
		    updated_at = NOW()
		WHERE id = $7
	`

	result, err := r.db.Exec(ctx, query,
		p.Name,
		p.Email,
		p.NotificationSound,
		p.NotificationsEnabled,
		p.WaterIntake,
		model.DateOf(time.Now()),
		userID,
	)
	if err != nil {
		r.logger.Error("failed to update user", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	return nil
}

// UpdateGameState writes only the gamification columns of the user
func (r *UserRepository) UpdateGameState(ctx context.Context, userID string, state model.GameState) error {
	query := `
		UPDATE users
		SET points = $1, level = $2, streak = $3, last_claim_date = $4,
		    perfect_days = $5, perfect_medicine_days = $6,
		    last_perfect_day = $7, last_perfect_medicine_day = $8,
		    updated_at = NOW()
		WHERE id = $9
	`

	result, err := r.db.Exec(ctx, query,
		state.Points,
		string(state.Level),
		state.Streak,
		state.LastClaimDate,
		state.PerfectDays,
		state.PerfectMedicineDays,
		state.LastPerfectDay,
		state.LastPerfectMedicineDay,
		userID,
	)
	if err != nil {
		r.logger.Error("failed to update game state", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("failed to update game state: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	return nil
}

// IncrementWaterIntake adds one glass to today's hydration and returns the new total.
// A count left over from an earlier day restarts at one.
func (r *UserRepository) IncrementWaterIntake(ctx context.Context, userID string) (int, error) {
	query := `
		UPDATE users
		SET water_intake = CASE WHEN water_date < $2::date THEN 1 ELSE water_intake + 1 END,
		    water_date = $2::date,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING water_intake
	`

	var glasses int
	err := r.db.QueryRow(ctx, query, userID, model.DateOf(time.Now())).Scan(&glasses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		r.logger.Error("failed to increment water intake", zap.Error(err), zap.String("user_id", userID))
		return 0, fmt.Errorf("failed to increment water intake: %w", err)
	}

	return glasses, nil
}

// ResetWaterIntakeBefore zeroes the hydration of every user whose count was last set before cutoff's day
func (r *UserRepository) ResetWaterIntakeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE users
		SET water_intake = 0, water_date = $1::date, updated_at = NOW()
		WHERE water_date < $1::date
	`

	result, err := r.db.Exec(ctx, query, model.DateOf(cutoff))
	if err != nil {
		r.logger.Error("failed to reset water intake", zap.Error(err))
		return 0, fmt.Errorf("failed to reset water intake: %w", err)
	}

	return result.RowsAffected(), nil
}

// NotificationSound returns the user's tone preference
func (r *UserRepository) NotificationSound(ctx context.Context, userID string) (string, error) {
	var sound string
	err := r.db.QueryRow(ctx, `SELECT notification_sound FROM users WHERE id = $1`, userID).Scan(&sound)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to read notification sound: %w", err)
	}

	return sound, nil
}

// ListReminderRecipients returns the users with notifications enabled and at least one scheduled slot
func (r *UserRepository) ListReminderRecipients(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT u.id
		FROM users u
		JOIN medicines m ON m.user_id = u.id
		WHERE u.notifications_enabled
		  AND (m.time1 <> '' OR m.time2 <> '' OR m.time3 <> '')
		ORDER BY u.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("failed to list reminder recipients", zap.Error(err))
		return nil, fmt.Errorf("failed to list reminder recipients: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect reminder recipients: %w", err)
	}

	return ids, nil
}
