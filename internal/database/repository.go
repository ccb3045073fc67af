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
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository handles all database operations
type Repository struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Repository)(nil)

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pool and verifies it with a ping
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// --- Experience Operations ---

const experienceColumns = `id, title, location, description, price, image, border_color, about, created_at, updated_at`

// ListExperiences returns all experiences, newest first
func (r *Repository) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+experienceColumns+`
		FROM experiences
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query experiences: %w", err)
	}
	defer rows.Close()

	experiences := []models.Experience{}
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		experiences = append(experiences, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate experiences: %w", err)
	}
	return experiences, nil
}

// GetExperience returns an experience by ID
func (r *Repository) GetExperience(ctx context.Context, id string) (*models.Experience, error) {
	return getExperience(ctx, r.pool, id)
}

func getExperience(ctx context.Context, q querier, id string) (*models.Experience, error) {
	row := q.QueryRow(ctx, `
		SELECT `+experienceColumns+`
		FROM experiences
		WHERE id = $1
	`, id)
	return scanExperience(row)
}

func scanExperience(row pgx.Row) (*models.Experience, error) {
	var e models.Experience
	err := row.Scan(
		&e.ID, &e.Title, &e.Location, &e.Description, &e.Price,
		&e.Image, &e.BorderColor, &e.About, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan experience: %w", err)
	}
	return &e, nil
}

// --- Slot Operations ---

const slotColumns = `id, experience_id, date, time, total_slots, booked_slots, created_at, updated_at`

// ListSlots returns the slots of an experience ordered by date then time
func (r *Repository) ListSlots(ctx context.Context, experienceID, date string) ([]models.Slot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE experience_id = $1 AND ($2 = '' OR date = $2)
		ORDER BY date ASC, time ASC, id ASC
	`, experienceID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	slots := []models.Slot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slots: %w", err)
	}
	return slots, nil
}

// GetSlot returns a slot by ID without locking it
func (r *Repository) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func scanSlot(row pgx.Row) (*models.Slot, error) {
	var s models.Slot
	err := row.Scan(
		&s.ID, &s.ExperienceID, &s.Date, &s.Time,
		&s.TotalSlots, &s.BookedSlots, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan slot: %w", err)
	}
	return &s, nil
}

// --- Promo Code Operations ---

const promoColumns = `id, code, discount_type, discount_value, min_amount, max_discount, is_active, created_at, updated_at`

// GetPromoCode returns a promo code by its case-insensitive code
func (r *Repository) GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	return getPromoCode(ctx, r.pool, code)
}

func getPromoCode(ctx context.Context, q querier, code string) (*models.PromoCode, error) {
	row := q.QueryRow(ctx, `
		SELECT `+promoColumns+`
		FROM promo_codes
		WHERE UPPER(code) = UPPER($1)
	`, code)
	return scanPromoCode(row)
}

// ListActivePromoCodes returns active promo codes, newest first
func (r *Repository) ListActivePromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+promoColumns+`
		FROM promo_codes
		WHERE is_active = TRUE
		ORDER BY created_at DESC, code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query promo codes: %w", err)
	}
	defer rows.Close()

	codes := []models.PromoCode{}
	for rows.Next() {
		p, err := scanPromoCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate promo codes: %w", err)
	}
	return codes, nil
}

func scanPromoCode(row pgx.Row) (*models.PromoCode, error) {
	var (
		p                           models.PromoCode
		value, minAmount, maxAmount pgtype.Numeric
	)
	err := row.Scan(
		&p.ID, &p.Code, &p.DiscountType, &value, &minAmount, &maxAmount,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan promo code: %w", err)
	}

	if p.DiscountValue, err = toDecimal(value); err != nil {
		return nil, fmt.Errorf("promo %s discount_value: %w", p.Code, err)
	}
	if p.MinAmount, err = toNullDecimal(minAmount); err != nil {
		return nil, fmt.Errorf("promo %s min_amount: %w", p.Code, err)
	}
	if p.MaxDiscount, err = toNullDecimal(maxAmount); err != nil {
		return nil, fmt.Errorf("promo %s max_discount: %w", p.Code, err)
	}
	return &p, nil
}

// --- Booking Operations ---

const bookingDetailsQuery = `
	SELECT b.id, b.experience_id, b.slot_id, b.user_name, b.user_email, b.user_phone,
	       b.participants, b.promo_code, b.discount_amount, b.total_amount, b.status,
	       b.created_at, b.updated_at,
	       e.title, e.location, s.date, s.time
	FROM bookings b
	JOIN experiences e ON e.id = b.experience_id
	JOIN slots s ON s.id = b.slot_id
`

// GetBookingDetails returns a booking joined with its experience and slot
func (r *Repository) GetBookingDetails(ctx context.Context, id string) (*models.BookingDetails, error) {
	row := r.pool.QueryRow(ctx, bookingDetailsQuery+` WHERE b.id = $1`, id)
	return scanBookingDetails(row)
}

// ListBookingsByEmail returns a user's bookings, newest first
func (r *Repository) ListBookingsByEmail(ctx context.Context, email string) ([]models.BookingDetails, error) {
	rows, err := r.pool.Query(ctx, bookingDetailsQuery+`
		WHERE b.user_email = $1
		ORDER BY b.created_at DESC, b.id DESC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.BookingDetails{}
	for rows.Next() {
		d, err := scanBookingDetails(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

func scanBookingDetails(row pgx.Row) (*models.BookingDetails, error) {
	var (
		d               models.BookingDetails
		discount, total pgtype.Numeric
	)
	err := row.Scan(
		&d.ID, &d.ExperienceID, &d.SlotID, &d.UserName, &d.UserEmail, &d.UserPhone,
		&d.Participants, &d.PromoCode, &discount, &total, &d.Status,
		&d.CreatedAt, &d.UpdatedAt,
		&d.ExperienceTitle, &d.ExperienceLocation, &d.Date, &d.Time,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	if err := fillAmounts(&d.Booking, discount, total); err != nil {
		return nil, err
	}
	return &d, nil
}

func fillAmounts(b *models.Booking, discount, total pgtype.Numeric) error {
	var err error
	if b.DiscountAmount, err = toDecimal(discount); err != nil {
		return fmt.Errorf("booking %s discount_amount: %w", b.ID, err)
	}
	if b.TotalAmount, err = toDecimal(total); err != nil {
		return fmt.Errorf("booking %s total_amount: %w", b.ID, err)
	}
	return nil
}
