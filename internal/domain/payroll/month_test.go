package payroll

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	for _, in := range []string{"2024-04", "2024-04-01", "2024-04-30"} {
		m, err := ParseMonth(in)
		require.NoError(t, err, in)
		assert.Equal(t, Month{Year: 2024, Month: time.April}, m, in)
	}

	for _, in := range []string{"", "2024-13", "04-2024", "2024-04-31", "april"} {
		_, err := ParseMonth(in)
		assert.True(t, errors.Is(err, ErrInvalidMonth), in)
	}
}

func TestMonth_Formatting(t *testing.T) {
	m := Month{Year: 2024, Month: time.February}
	assert.Equal(t, "2024-02", m.String())
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), m.FirstDay())
	assert.Equal(t, m, MonthOf(time.Date(2024, time.February, 29, 23, 0, 0, 0, time.UTC)))
	assert.True(t, Month{Year: 2023, Month: time.December}.Before(m))
	assert.False(t, m.Before(m))

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"2024-02"`, string(b))

	var back Month
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, m, back)
}

func TestListPayrollRequest_ToFilter(t *testing.T) {
	f, err := (&ListPayrollRequest{CompanyID: "c"}).ToFilter()
	require.NoError(t, err)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageLimit, f.Limit)
	assert.Equal(t, 0, f.Offset())

	f, err = (&ListPayrollRequest{CompanyID: "c", Page: 3, Limit: 1000, Month: "2024-04", Status: "paid", EmployeeID: "e"}).ToFilter()
	require.NoError(t, err)
	assert.Equal(t, MaxPageLimit, f.Limit)
	assert.Equal(t, 200, f.Offset())
	require.NotNil(t, f.Status)
	assert.Equal(t, PayrollStatusPaid, *f.Status)
	assert.Equal(t, "e", *f.EmployeeID)

	_, err = (&ListPayrollRequest{SortBy: "salary", SortOrder: "up"}).ToFilter()
	assert.Error(t, err)
}
