package broker

import "errors"

// Error taxonomy for the portfolio state machine. All violations are raised
// synchronously at the point of the offending call and are never retried;
// callers test with errors.Is.
var (
	// ErrConfiguration marks invalid constructor parameters.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrOrderingViolation marks a bar submitted with a timestamp not
	// strictly greater than the previous update's timestamp.
	ErrOrderingViolation = errors.New("bars out of chronological order")

	// ErrPolicyViolation marks an order rejected by account policy, such as
	// a short sale under a long-only account.
	ErrPolicyViolation = errors.New("order violates account policy")

	// ErrNotFound marks an attempt to close an instrument with no open
	// position.
	ErrNotFound = errors.New("position not found")

	// ErrRuin marks the account's total value becoming non-positive.
	ErrRuin = errors.New("account value non-positive")
)
