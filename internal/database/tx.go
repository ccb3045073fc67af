package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// check_violation
const pgCheckViolation = "23514"

// WithTx runs fn in a read-committed transaction. Rows read with a
// ForUpdate method are locked with SELECT ... FOR UPDATE until commit.
func (r *Repository) WithTx(ctx context.Context, fn store.TxFunc) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &repoTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type repoTx struct {
	tx pgx.Tx
}

var _ store.Tx = (*repoTx)(nil)

func (t *repoTx) GetExperience(ctx context.Context, id string) (*models.Experience, error) {
	return getExperience(ctx, t.tx, id)
}

func (t *repoTx) GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	return getPromoCode(ctx, t.tx, code)
}

func (t *repoTx) GetSlotForUpdate(ctx context.Context, id string) (*models.Slot, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanSlot(row)
}

func (t *repoTx) GetBookingForUpdate(ctx context.Context, id string) (*models.Booking, error) {
	var (
		b               models.Booking
		discount, total pgtype.Numeric
	)
	err := t.tx.QueryRow(ctx, `
		SELECT id, experience_id, slot_id, user_name, user_email, user_phone,
		       participants, promo_code, discount_amount, total_amount, status,
		       created_at, updated_at
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&b.ID, &b.ExperienceID, &b.SlotID, &b.UserName, &b.UserEmail, &b.UserPhone,
		&b.Participants, &b.PromoCode, &discount, &total, &b.Status,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if err := fillAmounts(&b, discount, total); err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *repoTx) InsertBooking(ctx context.Context, b *models.Booking) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO bookings (id, experience_id, slot_id, user_name, user_email, user_phone,
		                      participants, promo_code, discount_amount, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`,
		b.ID, b.ExperienceID, b.SlotID, b.UserName, b.UserEmail, b.UserPhone,
		b.Participants, b.PromoCode, fromDecimal(b.DiscountAmount), fromDecimal(b.TotalAmount), b.Status,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (t *repoTx) UpdateSlotBookedCount(ctx context.Context, slotID string, delta int) error {
	result, err := t.tx.Exec(ctx, `
		UPDATE slots
		SET booked_slots = booked_slots + $1, updated_at = NOW()
		WHERE id = $2 AND booked_slots + $1 BETWEEN 0 AND total_slots
	`, delta, slotID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return store.ErrCapacityConstraint
		}
		return fmt.Errorf("failed to update booked slots: %w", err)
	}
	if result.RowsAffected() == 0 {
		if _, err := t.GetSlotForUpdate(ctx, slotID); err != nil {
			return err
		}
		return store.ErrCapacityConstraint
	}
	return nil
}

func (t *repoTx) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	result, err := t.tx.Exec(ctx, `
		UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
