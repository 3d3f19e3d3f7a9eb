package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Coupon validation errors, checked in order by the validator.
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponInactive   = errors.New("coupon is inactive")
	ErrCouponExpired    = errors.New("coupon has expired")
	ErrCouponUsageLimit = errors.New("coupon usage limit reached")

	// Entitlement errors
	ErrMissingTargetID     = errors.New("entitlement target id is missing")
	ErrUnknownPurchaseKind = errors.New("unknown purchase kind")
	ErrIntentConsumed      = errors.New("purchase intent already consumed or expired")

	// Webhook errors
	ErrInvalidSignature = errors.New("webhook signature verification failed")
)
