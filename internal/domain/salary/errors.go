package salary

import "errors"

var (
	ErrUnknownSalaryType    = errors.New("unknown salary type")
	ErrUnknownCareerStage   = errors.New("unknown career stage")
	ErrInvalidTables        = errors.New("invalid statutory tables")
	ErrComputationInvariant = errors.New("salary computation invariant violated")
)
