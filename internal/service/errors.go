package service

import "errors"

// Ledger and payment errors surfaced to handlers. Handlers map these to HTTP
// status codes; anything else is a 500.
var (
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidSourceType      = errors.New("unknown payment source type")
	ErrWalletNotFound         = errors.New("wallet not found")
	ErrLecturerWalletNotFound = errors.New("lecturer wallet not found")
	ErrInsufficientBalance    = errors.New("insufficient wallet balance")
	ErrCreditFailed           = errors.New("credit leg failed")
	ErrDuplicatePayment       = errors.New("payment already processed")
	ErrRefundExceedsOriginal  = errors.New("refund exceeds original transaction amount")
	ErrWithdrawalNotFound     = errors.New("withdrawal request not found")
	ErrInvalidWithdrawalState = errors.New("withdrawal request is not in a state that allows this action")
	ErrFundingLimit           = errors.New("funding amount outside allowed limits")
	ErrFundingNotConfirmed    = errors.New("gateway has not confirmed this payment")
)
