package payroll

import (
	"fmt"
	"strings"
)

// PayrollStatus enum
type PayrollStatus string

const (
	// PayrollStatusDraft is the conceptual state before calculation. Records
	// are never stored in it.
	PayrollStatusDraft      PayrollStatus = "DRAFT"
	PayrollStatusCalculated PayrollStatus = "CALCULATED"
	PayrollStatusApproved   PayrollStatus = "APPROVED"
	PayrollStatusProcessed  PayrollStatus = "PROCESSED"
	PayrollStatusPaid       PayrollStatus = "PAID"
	PayrollStatusArchived   PayrollStatus = "ARCHIVED"
)

var statusOrder = map[PayrollStatus]int{
	PayrollStatusDraft:      0,
	PayrollStatusCalculated: 1,
	PayrollStatusApproved:   2,
	PayrollStatusProcessed:  3,
	PayrollStatusPaid:       4,
	PayrollStatusArchived:   5,
}

// ParseStatus accepts any letter case.
func ParseStatus(s string) (PayrollStatus, error) {
	st := PayrollStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := statusOrder[st]; !ok {
		return "", fmt.Errorf("unknown payroll status %q", s)
	}
	return st, nil
}

func (s PayrollStatus) IsValid() bool {
	_, ok := statusOrder[s]
	return ok
}

func (s PayrollStatus) IsTerminal() bool {
	return s == PayrollStatusArchived
}

// Rank orders statuses along the lifecycle.
func (s PayrollStatus) Rank() int {
	if r, ok := statusOrder[s]; ok {
		return r
	}
	return -1
}

// Action is a lifecycle operation on a stored record.
type Action string

const (
	ActionCalculate Action = "calculate"
	ActionApprove   Action = "approve"
	ActionProcess   Action = "process"
	// ActionArchive moves PROCESSED records to PAID.
	ActionArchive Action = "archive"
	// ActionClose moves PAID records to the terminal ARCHIVED status.
	ActionClose Action = "close"
)

type Transition struct {
	From PayrollStatus
	To   PayrollStatus
}

// transitions is the complete lifecycle. Anything absent is rejected.
var transitions = map[Action]Transition{
	ActionCalculate: {From: PayrollStatusDraft, To: PayrollStatusCalculated},
	ActionApprove:   {From: PayrollStatusCalculated, To: PayrollStatusApproved},
	ActionProcess:   {From: PayrollStatusApproved, To: PayrollStatusProcessed},
	ActionArchive:   {From: PayrollStatusProcessed, To: PayrollStatusPaid},
	ActionClose:     {From: PayrollStatusPaid, To: PayrollStatusArchived},
}

// TransitionFor returns the transition an action performs.
func TransitionFor(a Action) (Transition, error) {
	t, ok := transitions[a]
	if !ok {
		return Transition{}, fmt.Errorf("unknown payroll action %q", a)
	}
	return t, nil
}

// CanTransition reports whether the table contains from -> to.
func CanTransition(from, to PayrollStatus) bool {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// Apply checks that an action is legal from the current status and returns
// the target status.
func (a Action) Apply(current PayrollStatus) (PayrollStatus, error) {
	t, err := TransitionFor(a)
	if err != nil {
		return "", err
	}
	if current != t.From {
		return "", &TransitionError{Action: a, Current: current, From: t.From, To: t.To}
	}
	return t.To, nil
}

// TransitionError describes a rejected lifecycle move. It matches
// ErrInvalidStatusTransition with errors.Is.
type TransitionError struct {
	Action  Action
	Current PayrollStatus
	From    PayrollStatus
	To      PayrollStatus
}

func (e *TransitionError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("cannot move payroll from %s to %s: current status is %s", e.From, e.To, e.Current)
	}
	return fmt.Sprintf("cannot %s payroll in status %s, expected %s", e.Action, e.Current, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidStatusTransition
}
