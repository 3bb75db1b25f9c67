package validator

import (
	"fmt"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	valid := []string{"2024-01", "2024-12", "2024-03-01"}
	invalid := []string{"2024-13", "2024-00", "24-01", "2024/01", "", "2024-1"}
	for _, m := range valid {
		if !IsValidMonth(m) {
			t.Errorf("IsValidMonth(%q) = false, want true", m)
		}
	}
	for _, m := range invalid {
		if IsValidMonth(m) {
			t.Errorf("IsValidMonth(%q) = true, want false", m)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"CALCULATED", "APPROVED"}
	if !IsInSlice("APPROVED", slice) {
		t.Error("IsInSlice should find APPROVED")
	}
	if IsInSlice("approved", slice) {
		t.Error("IsInSlice should be case sensitive")
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "basic_salary", Message: "must be greater than zero"},
		{Field: "sales_count", Message: "must not be negative"},
	}

	if got, want := errs.Error(), "basic_salary: must be greater than zero; sales_count: must not be negative"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if m := errs.ToMap(); m["sales_count"] != "must not be negative" {
		t.Errorf("ToMap()[sales_count] = %q", m["sales_count"])
	}
	if f := errs.Fields(); len(f) != 2 || f[0] != "basic_salary" {
		t.Errorf("Fields() = %v", f)
	}

	wrapped := fmt.Errorf("calculate: %w", errs)
	got, ok := AsValidationErrors(wrapped)
	if !ok || len(got) != 2 {
		t.Errorf("AsValidationErrors(wrapped) = %v, %v", got, ok)
	}
	if _, ok := AsValidationErrors(fmt.Errorf("plain")); ok {
		t.Error("AsValidationErrors should not match a plain error")
	}
}
