package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a storage transaction
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultBalanceCacheTTL bounds how long a derived balance may be served
	// from cache when no invalidation arrives.
	DefaultBalanceCacheTTL = 5 * time.Minute

	// OpeningBalanceItemName labels zero-quantity opening balance records.
	OpeningBalanceItemName = "opening balance"
)
