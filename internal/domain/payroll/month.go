package payroll

import (
	"encoding/json"
	"fmt"
	"time"
)

// Month identifies a payroll period. Dates inside a month normalize to it.
type Month struct {
	Year  int
	Month time.Month
}

func NewMonth(year int, month time.Month) (Month, error) {
	if year < 1900 || year > 9999 || month < time.January || month > time.December {
		return Month{}, fmt.Errorf("%w: %04d-%02d", ErrInvalidMonth, year, int(month))
	}
	return Month{Year: year, Month: month}, nil
}

// MonthOf returns the month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth accepts "2006-01" or a full "2006-01-02" date.
func ParseMonth(s string) (Month, error) {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewMonth(t.Year(), t.Month())
		}
	}
	return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
}

// FirstDay is the canonical stored form of the month.
func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
