package lending

import (
	"errors"

	"lendvault/native/common"
)

var (
	// ErrReentrantCall surfaces a blocked re-entrant operation attempt.
	ErrReentrantCall = common.ErrReentrantCall

	ErrUnsupportedToken      = errors.New("lending engine: token not supported")
	ErrAlreadyRegistered     = errors.New("lending engine: token already registered")
	ErrInsufficientLiquidity = errors.New("lending engine: insufficient liquidity")
	ErrExceedsBorrowLimit    = errors.New("lending engine: amount exceeds borrow limit")
	ErrInsufficientRepayment = errors.New("lending engine: repayment below total due")
	ErrNoActiveLoan          = errors.New("lending engine: no active loan for id")
	ErrNotLiquidatable       = errors.New("lending engine: borrower not eligible for liquidation")
	ErrPriceUnavailable      = errors.New("lending engine: price unavailable")
	ErrArithmeticOverflow    = errors.New("lending engine: arithmetic overflow")
	ErrInvalidTerm           = errors.New("lending engine: invalid loan term")
	ErrInvalidAmount         = errors.New("lending engine: amount must be positive")
	ErrInsufficientBalance   = errors.New("lending engine: insufficient balance")
	ErrHealthCheckFailed     = errors.New("lending engine: collateral would fall below health floor")

	errNilState = errors.New("lending engine: state not configured")
)
