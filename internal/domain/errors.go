package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// NotFoundError reports a missing experience, slot, booking or promo code.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// CapacityExceededError reports a booking larger than the slot's remaining capacity.
type CapacityExceededError struct {
	SlotID    string
	Requested int
	Available int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("not enough slots available: requested %d, available %d", e.Requested, e.Available)
}

// Shortfall is how many participants could not be seated.
func (e CapacityExceededError) Shortfall() int {
	if e.Available < 0 {
		return e.Requested
	}
	return e.Requested - e.Available
}

// PromoRejection says why a promo code was refused.
type PromoRejection string

const (
	PromoNotFound        PromoRejection = "not found or inactive"
	PromoMinimumNotMet   PromoRejection = "minimum amount not met"
	PromoUnsupportedType PromoRejection = "unsupported discount type"
	PromoInvalidAmount   PromoRejection = "invalid amount"
)

// InvalidPromoError reports a promo code that cannot be applied.
type InvalidPromoError struct {
	Code      string
	Reason    PromoRejection
	MinAmount decimal.Decimal
}

func (e InvalidPromoError) Error() string {
	switch e.Reason {
	case PromoMinimumNotMet:
		return fmt.Sprintf("minimum order amount of %s required for this promo code", e.MinAmount.String())
	case PromoNotFound, "":
		return "invalid or expired promo code"
	default:
		return fmt.Sprintf("invalid promo code: %s", e.Reason)
	}
}

// InvalidStateError reports an operation that the record's status forbids.
type InvalidStateError struct {
	Resource string
	Msg      string
}

func (e InvalidStateError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	default:
		return "invalid state"
	}
}

// ValidationError reports malformed input that never reached storage.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field != "" && e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	return "validation error"
}

// InternalError wraps storage and transport failures.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsCapacityExceeded(err error) bool {
	var target CapacityExceededError
	return errors.As(err, &target)
}

func IsInvalidPromo(err error) bool {
	var target InvalidPromoError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target InvalidStateError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// IsTyped reports whether err carries one of the domain error kinds.
func IsTyped(err error) bool {
	return IsNotFound(err) || IsCapacityExceeded(err) || IsInvalidPromo(err) ||
		IsInvalidState(err) || IsValidation(err) || IsInternal(err)
}

// Internal wraps err as an InternalError unless it already is a domain error.
func Internal(msg string, err error) error {
	if err == nil || IsTyped(err) {
		return err
	}
	return InternalError{Msg: msg, Err: err}
}
