package assettrack

import "errors"

// Failure classes reported by the engine. Errors returned by this package
// wrap one of them; test with errors.Is.
var (
	// ErrMalformedInput is a record with missing fields or an amount that
	// must be positive but is not.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnmatchedCounterparty marks a transfer leg with no counterpart. It
	// is never fatal: the leg is set aside for review.
	ErrUnmatchedCounterparty = errors.New("unmatched counterparty")
	// ErrInsufficientInventory is a sale, fee or transfer larger than the
	// open lots that can serve it.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrUnsupportedConversion is any operation across two currencies.
	ErrUnsupportedConversion = errors.New("unsupported currency conversion")
	// ErrTypeMismatch is an operation between different asset types, item
	// types, or incompatible measurement units.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrReused is returned when transactions are applied twice to the same
	// Inventory.
	ErrReused = errors.New("inventory already used")
)
