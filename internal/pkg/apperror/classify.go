package apperror

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

// KindOf classifies err. Anything not recognised is internal.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return kindOfCode(ae.Code)
	}
	if _, ok := validator.AsValidationErrors(err); ok {
		return KindValidation
	}

	switch {
	case errors.Is(err, salary.ErrUnknownSalaryType),
		errors.Is(err, salary.ErrUnknownCareerStage),
		errors.Is(err, payroll.ErrInvalidMonth):
		return KindValidation
	case errors.Is(err, payroll.ErrPayrollRecordAlreadyExists),
		errors.Is(err, payroll.ErrInvalidStatusTransition),
		errors.Is(err, employee.ErrEmployeeInactive):
		return KindConflict
	case errors.Is(err, payroll.ErrPayrollRecordNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound):
		return KindNotFound
	}
	return KindInternal
}

// HTTPStatus maps err to 400, 409, 404 or 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// FromError converts err into an AppError. With production set, internal
// errors carry a generic message and no wrapped detail.
func FromError(err error, production bool) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}

	switch KindOf(err) {
	case KindValidation:
		appErr := Wrap(err, CodeInvalidInput, "invalid input", http.StatusBadRequest)
		if ve, ok := validator.AsValidationErrors(err); ok {
			appErr.Fields = ve.ToMap()
		}
		return appErr
	case KindConflict:
		code := CodeConflict
		if errors.Is(err, payroll.ErrInvalidStatusTransition) {
			code = CodeInvalidState
		}
		return Wrap(err, code, err.Error(), http.StatusConflict)
	case KindNotFound:
		return Wrap(err, CodeNotFound, err.Error(), http.StatusNotFound)
	}

	if production {
		return New(CodeInternalError, "internal server error", http.StatusInternalServerError)
	}
	return Wrap(err, CodeInternalError, "internal server error", http.StatusInternalServerError)
}

func kindOfCode(code string) Kind {
	switch code {
	case CodeInvalidInput:
		return KindValidation
	case CodeConflict, CodeInvalidState:
		return KindConflict
	case CodeNotFound:
		return KindNotFound
	}
	return KindInternal
}
