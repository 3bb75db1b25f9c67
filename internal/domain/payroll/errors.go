package payroll

import "errors"

var (
	ErrPayrollRecordNotFound      = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyExists = errors.New("payroll record already exists for this period")
	ErrInvalidStatusTransition    = errors.New("invalid payroll status transition")
	ErrInvalidMonth               = errors.New("invalid payroll month")
)
