package store

import "errors"

// Sentinel errors returned by repository lookups, explicit not-found
// errors instead of nil,nil returns.
var (
	ErrDepositNotFound    = errors.New("store: deposit not found")
	ErrRedemptionNotFound = errors.New("store: redemption not found")
	ErrDuplicateDeposit   = errors.New("store: deposit already exists")
	ErrDuplicateRedemption = errors.New("store: redemption already exists")
	ErrStaleUpdate        = errors.New("store: update touched zero rows, record was modified or removed concurrently")
)
