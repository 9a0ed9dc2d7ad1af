package khata

import "errors"

// Errors returned by Book operations. They are wrapped with context and
// should be tested with errors.Is.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrNoLines               = errors.New("no line with a positive quantity")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrOverpayment           = errors.New("payment exceeds pending amount")
	ErrOutstandingBalance    = errors.New("customer has an outstanding balance")
	ErrBatchInUse            = errors.New("batch already consumed by sales")
	ErrSalePaid              = errors.New("sale already received payments")
	ErrNotPaid               = errors.New("credit is not paid")
	ErrCustomerRequired      = errors.New("credit sale requires a customer")
	ErrSameAccount           = errors.New("cannot transfer to the same account")
)
