package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTables_EmptyPathReturnsDefaults(t *testing.T) {
	got, err := LoadTables("")
	require.NoError(t, err)
	assert.Equal(t, salary.DefaultTables(), got)
}

func TestParseTables_OverlaysDefaults(t *testing.T) {
	doc := `
version: "2025-26"
professional_tax:
  scheme: percent
esi_rate: 0.75
esi_ceiling: "25000"
standard:
  hra_rate: 40
sales:
  base_pay:
    PROBATION: 6000
  referral:
    cap: 20000
`
	got, err := ParseTables([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "2025-26", got.Version)
	assert.Equal(t, salary.PercentPTSchedule(), got.ProfessionalTax)
	assert.Equal(t, salary.Rate(75), got.ESIRate)
	assert.Equal(t, salary.Rupees(25000), got.ESICeiling)
	assert.Equal(t, salary.Percent(40), got.Standard.HRARate)
	assert.Equal(t, salary.Percent(8), got.Standard.DARate)
	assert.Equal(t, salary.Rupees(6000), got.Sales.BasePay[salary.CareerStageProbation])
	assert.Equal(t, salary.Rupees(13000), got.Sales.BasePay[salary.CareerStageEstablished])
	assert.Equal(t, salary.Rupees(20000), got.Sales.Referral.Cap)
	assert.Equal(t, int64(3), got.Sales.Referral.Divisor)
}

func TestParseTables_ExplicitBands(t *testing.T) {
	doc := `
professional_tax:
  scheme: flat
  bands:
    - up_to: 12000
      flat: 0
    - flat: 200
`
	got, err := ParseTables([]byte(doc))
	require.NoError(t, err)
	require.Len(t, got.ProfessionalTax.Bands, 2)
	assert.Equal(t, salary.PTBand{UpTo: salary.Rupees(12000)}, got.ProfessionalTax.Bands[0])
	assert.Equal(t, salary.PTBand{Flat: salary.Rupees(200)}, got.ProfessionalTax.Bands[1])
}

func TestParseTables_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name: "unknown key",
			doc:  "pf_rat: 12\n",
		},
		{
			name: "not a number",
			doc:  "pf_rate: twelve\n",
		},
		{
			name: "unknown scheme",
			doc:  "professional_tax:\n  scheme: progressive\n",
		},
		{
			name: "sub basis point rate",
			doc:  "esi_rate: 0.755\n",
		},
		{
			name: "unknown career stage",
			doc:  "sales:\n  base_pay:\n    established: 13000\n",
		},
		{
			name:  "gap in commission tiers",
			doc:   "sales:\n  commission:\n    - {tier: 1, from: 1, to: 10, rate_per_sale: 1000}\n    - {tier: 2, from: 12, rate_per_sale: 2000}\n",
			field: "sales.commission[1]",
		},
		{
			name:  "open band not last",
			doc:   "professional_tax:\n  bands:\n    - flat: 100\n    - up_to: 20000\n      flat: 200\n",
			field: "professional_tax.bands[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTables([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, salary.ErrInvalidTables)
			if tt.field != "" {
				verrs, ok := validator.AsValidationErrors(err)
				require.True(t, ok)
				assert.Contains(t, verrs.ToMap(), tt.field)
			}
		})
	}
}

func TestMarshalTables_ReadsBack(t *testing.T) {
	defaults := salary.DefaultTables()
	data, err := MarshalTables(defaults)
	require.NoError(t, err)

	got, err := ParseTables(data)
	require.NoError(t, err)
	assert.Equal(t, defaults, got)
}

func TestLoadTables_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: test\npf_rate: 10\n"), 0o600))

	got, err := LoadTables(path)
	require.NoError(t, err)
	assert.Equal(t, "test", got.Version)
	assert.Equal(t, salary.Percent(10), got.PFRate)

	_, err = LoadTables(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseTables_EmptyDocument(t *testing.T) {
	got, err := ParseTables(nil)
	require.NoError(t, err)
	assert.Equal(t, salary.DefaultTables(), got)
}
