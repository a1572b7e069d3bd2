package types

import (
	"cosmossdk.io/errors"
)

// Request errors: the call is well-formed but rejected by the engine's
// business rules. Each aborts only the enclosing call (§7.1).
var (
	ErrWouldCross          = errors.Register("clob", 1, "post-only order would cross the book")
	ErrNotOwner            = errors.Register("clob", 2, "caller does not own the resting order")
	ErrExpired             = errors.Register("clob", 3, "resting order has expired")
	ErrPriceOutOfBand      = errors.Register("clob", 4, "tick is outside the allowed price band")
	ErrSelfTrade           = errors.Register("clob", 5, "order would trade against the same trader")
	ErrInsufficientBalance = errors.Register("clob", 6, "trader has insufficient free balance")
	ErrOrderBookFull       = errors.Register("clob", 7, "resting-order slots at this tick are full")
	ErrDuplicateOrderID    = errors.Register("clob", 8, "order id already occupied")
	ErrOrderNotFound       = errors.Register("clob", 9, "resting order not found")
)

// Protocol errors: malformed calldata. Abort the whole batch (§7.2).
var (
	ErrMalformedCalldata = errors.Register("clob", 20, "calldata could not be parsed")
	ErrUnknownSelector   = errors.Register("clob", 21, "unrecognized dispatch selector")
	ErrTruncatedPayload  = errors.Register("clob", 22, "selector payload shorter than required")
	ErrBatchTooLarge     = errors.Register("clob", 23, "batch size exceeds maximum")
)

// Invariant faults: impossible states read back from storage. Never
// recovered from internally — always halt the transaction (§7.3).
var (
	ErrInvariantFault = errors.Register("clob", 40, "invariant fault: storage state is inconsistent")
)

// ErrInvalidEncoding marks a slot-codec failure, used when a fixed-width field
// read back from a slot is out of its valid domain (e.g. a tick's top
// 11 bits are non-zero, or a side byte is neither 0 nor 1).
var ErrInvalidEncoding = errors.Register("clob", 41, "invalid slot encoding")
