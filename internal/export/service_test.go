package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nkmathur/partsrecon/constants"
	"github.com/nkmathur/partsrecon/internal/entity"
)

func amt(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestFormatAmount(t *testing.T) {
	s := NewService("₹", nil)

	assert.Equal(t, "", s.FormatAmount(nil))
	assert.Equal(t, "₹350.00", s.FormatAmount(amt("350.00")))
	assert.Equal(t, "₹1,500.00", s.FormatAmount(amt("1500")))
	assert.Equal(t, "₹1,234,567.89", s.FormatAmount(amt("1234567.89")))
}

func TestComparisonXLSX(t *testing.T) {
	s := NewService("₹", nil)

	results := []entity.ReconciliationResult{
		{
			Key:         "AB1234",
			Description: "Brake Pad Set",
			LeftAmount:  amt("1500.00"),
			RightAmount: amt("1750.00"),
			Status:      constants.StatusIncreased,
		},
		{
			Key:         "EF9012",
			Description: "Wiper Blade",
			RightAmount: amt("450.00"),
			Status:      constants.StatusNew,
		},
	}

	data, err := s.ComparisonXLSX(results)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	const sheet = "Comparison"

	header, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Part Number", header)

	key, _ := f.GetCellValue(sheet, "A2")
	assert.Equal(t, "AB1234", key)
	est, _ := f.GetCellValue(sheet, "C2")
	assert.Equal(t, "₹1,500.00", est)
	status, _ := f.GetCellValue(sheet, "E2")
	assert.Equal(t, "Increased", status)

	// Absent estimate renders empty for a new part.
	est2, _ := f.GetCellValue(sheet, "C3")
	assert.Equal(t, "", est2)
	status2, _ := f.GetCellValue(sheet, "E3")
	assert.Equal(t, "New Part", status2)
}

func TestComparisonXLSXEmpty(t *testing.T) {
	s := NewService("", nil)

	data, err := s.ComparisonXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Comparison", "E1")
	require.NoError(t, err)
	assert.Equal(t, "Status", header)
}
