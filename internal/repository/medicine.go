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

const medicineColumns = `
	id, user_id, name, dosage,
	time1, time2, time3,
	taken1, taken2, taken3,
	taken_at1, taken_at2, taken_at3,
	duration_days, start_date, notes,
	created_at, updated_at`

// MedicineRepository manages medicine records
type MedicineRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewMedicineRepository creates a new MedicineRepository
func NewMedicineRepository(db *pgxpool.Pool, logger *zap.Logger) *MedicineRepository {
	return &MedicineRepository{
		db:     db,
		logger: logger,
	}
}

func scanMedicine(row pgx.Row) (*model.Medicine, error) {
	var med model.Medicine
	err := row.Scan(
		&med.ID,
		&med.UserID,
		&med.Name,
		&med.Dosage,
		&med.Slots[0].Time,
		&med.Slots[1].Time,
		&med.Slots[2].Time,
		&med.Slots[0].Taken,
		&med.Slots[1].Taken,
		&med.Slots[2].Taken,
		&med.Slots[0].TakenAt,
		&med.Slots[1].TakenAt,
		&med.Slots[2].TakenAt,
		&med.DurationDays,
		&med.StartDate,
		&med.Notes,
		&med.CreatedAt,
		&med.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	med.StartDate = localDate(med.StartDate)
	return &med, nil
}

// Create creates a new medicine record
func (r *MedicineRepository) Create(ctx context.Context, med *model.Medicine) error {
	query := `
		INSERT INTO medicines (
			id, user_id, name, dosage,
			time1, time2, time3,
			duration_days, start_date, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		med.ID,
		med.UserID,
		med.Name,
		med.Dosage,
		med.Slots[0].Time,
		med.Slots[1].Time,
		med.Slots[2].Time,
		med.DurationDays,
		med.StartDate,
		med.Notes,
	).Scan(&med.CreatedAt, &med.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create medicine",
			zap.Error(err),
			zap.String("medicine_id", med.ID),
			zap.String("user_id", med.UserID),
		)
		return fmt.Errorf("failed to create medicine: %w", err)
	}

	return nil
}

// FindByUserID retrieves all medicines of a user in creation order
func (r *MedicineRepository) FindByUserID(ctx context.Context, userID string) ([]model.Medicine, error) {
	query := `SELECT ` + medicineColumns + `
		FROM medicines
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to find medicines", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to find medicines: %w", err)
	}
	defer rows.Close()

	medicines := []model.Medicine{}
	for rows.Next() {
		med, err := scanMedicine(rows)
		if err != nil {
			r.logger.Error("failed to scan medicine", zap.Error(err))
			return nil, fmt.Errorf("failed to scan medicine: %w", err)
		}
		medicines = append(medicines, *med)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating medicines", zap.Error(err))
		return nil, fmt.Errorf("error iterating medicines: %w", err)
	}

	return medicines, nil
}

// FindByID retrieves a medicine by ID
func (r *MedicineRepository) FindByID(ctx context.Context, medicineID string) (*model.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`

	med, err := scanMedicine(r.db.QueryRow(ctx, query, medicineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("medicine %s: %w", medicineID, ErrNotFound)
		}
		r.logger.Error("failed to find medicine", zap.Error(err), zap.String("medicine_id", medicineID))
		return nil, fmt.Errorf("failed to find medicine: %w", err)
	}

	return med, nil
}

// Update replaces the editable fields and slot state of a medicine
func (r *MedicineRepository) Update(ctx context.Context, med *model.Medicine) error {
	query := `
		UPDATE medicines
		SET name = $1, dosage = $2,
		    time1 = $3, time2 = $4, time3 = $5,
		    taken1 = $6, taken2 = $7, taken3 = $8,
		    taken_at1 = $9, taken_at2 = $10, taken_at3 = $11,
		    duration_days = $12, start_date = $13, notes = $14,
		    updated_at = NOW()
		WHERE id = $15
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		med.Name,
		med.Dosage,
		med.Slots[0].Time,
		med.Slots[1].Time,
		med.Slots[2].Time,
		med.Slots[0].Taken,
		med.Slots[1].Taken,
		med.Slots[2].Taken,
		med.Slots[0].TakenAt,
		med.Slots[1].TakenAt,
		med.Slots[2].TakenAt,
		med.DurationDays,
		med.StartDate,
		med.Notes,
		med.ID,
	).Scan(&med.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("medicine %s: %w", med.ID, ErrNotFound)
		}
		r.logger.Error("failed to update medicine",
			zap.Error(err),
			zap.String("medicine_id", med.ID),
		)
		return fmt.Errorf("failed to update medicine: %w", err)
	}

	return nil
}

// SetSlotTaken sets the taken state of one slot and returns the updated medicine
func (r *MedicineRepository) SetSlotTaken(ctx context.Context, medicineID string, slot int, taken bool, takenAt *time.Time) (*model.Medicine, error) {
	if slot < 1 || slot > model.MaxSlots {
		return nil, fmt.Errorf("invalid slot %d", slot)
	}

	// Column names come from the validated slot number only
	query := fmt.Sprintf(`
		UPDATE medicines
		SET taken%[1]d = $1, taken_at%[1]d = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING %[2]s
	`, slot, medicineColumns)

	med, err := scanMedicine(r.db.QueryRow(ctx, query, taken, takenAt, medicineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("medicine %s: %w", medicineID, ErrNotFound)
		}
		r.logger.Error("failed to set slot taken",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
			zap.Int("slot", slot),
		)
		return nil, fmt.Errorf("failed to set slot taken: %w", err)
	}

	return med, nil
}

// Delete deletes a medicine record
func (r *MedicineRepository) Delete(ctx context.Context, medicineID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM medicines WHERE id = $1`, medicineID)
	if err != nil {
		r.logger.Error("failed to delete medicine",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
		)
		return fmt.Errorf("failed to delete medicine: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("medicine %s: %w", medicineID, ErrNotFound)
	}

	return nil
}

// ResetTakenFlags clears every slot's taken state, for all users when userID is empty
func (r *MedicineRepository) ResetTakenFlags(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE medicines
		SET taken1 = false, taken2 = false, taken3 = false,
		    taken_at1 = NULL, taken_at2 = NULL, taken_at3 = NULL,
		    updated_at = NOW()
		WHERE ($1 = '' OR user_id::text = $1)
		  AND (taken1 OR taken2 OR taken3)
	`

	result, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to reset taken flags", zap.Error(err), zap.String("user_id", userID))
		return 0, fmt.Errorf("failed to reset taken flags: %w", err)
	}

	return result.RowsAffected(), nil
}

// ResetTakenBefore clears every slot, for all users, that was marked taken before cutoff.
// Slots marked taken at or after cutoff are kept, so repeated runs on the same day are harmless.
func (r *MedicineRepository) ResetTakenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE medicines
		SET taken1 = taken1 AND COALESCE(taken_at1 >= $1, false),
		    taken_at1 = CASE WHEN taken_at1 >= $1 THEN taken_at1 END,
		    taken2 = taken2 AND COALESCE(taken_at2 >= $1, false),
		    taken_at2 = CASE WHEN taken_at2 >= $1 THEN taken_at2 END,
		    taken3 = taken3 AND COALESCE(taken_at3 >= $1, false),
		    taken_at3 = CASE WHEN taken_at3 >= $1 THEN taken_at3 END,
		    updated_at = NOW()
		WHERE (taken1 AND (taken_at1 IS NULL OR taken_at1 < $1))
		   OR (taken2 AND (taken_at2 IS NULL OR taken_at2 < $1))
		   OR (taken3 AND (taken_at3 IS NULL OR taken_at3 < $1))
	`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		r.logger.Error("failed to reset stale taken flags", zap.Error(err), zap.Time("cutoff", cutoff))
		return 0, fmt.Errorf("failed to reset stale taken flags: %w", err)
	}

	return result.RowsAffected(), nil
}
