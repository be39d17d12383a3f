package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "2.5", want: 2500},
		{in: "3", want: 3000},
		{in: "0.125", want: 125},
		{in: ".5", want: 500},
		{in: " 12.05 ", want: 12050},
		{in: "2.1234", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseQuantity(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "2.5", FormatQuantity(2500))
	assert.Equal(t, "3", FormatQuantity(3000))
	assert.Equal(t, "0.125", FormatQuantity(125))
	assert.Equal(t, "12.05", FormatQuantity(12050))
}

func TestLineAmount_MetricQuantity(t *testing.T) {
	// 2.5 m² at rate 20000 -> 50000
	line := InvoiceLine{Rate: 20000, MetricQuantity: 2500}
	assert.Equal(t, int64(50000), LineAmount(line))
}

func TestComputeTotals(t *testing.T) {
	inv := Invoice{
		InvoiceRequest: InvoiceRequest{
			Tax: 10,
			Items: []InvoiceLine{
				{Name: "tiles", Rate: 10000, Quantity: 3},
			},
		},
	}
	inv.ComputeTotals()

	assert.Equal(t, int64(30000), inv.Items[0].Amount)
	assert.Equal(t, int64(30000), inv.Subtotal)
	assert.Equal(t, int64(33000), inv.Total)
}

func TestComputeTotals_MixedLinesAndRounding(t *testing.T) {
	inv := Invoice{
		InvoiceRequest: InvoiceRequest{
			Tax: 11,
			Items: []InvoiceLine{
				{Name: "grout", Rate: 333, Quantity: 1},
				{Name: "marble", Rate: 10000, MetricQuantity: 1500}, // 1.5 units
			},
		},
	}
	inv.ComputeTotals()

	assert.Equal(t, int64(333), inv.Items[0].Amount)
	assert.Equal(t, int64(15000), inv.Items[1].Amount)
	assert.Equal(t, int64(15333), inv.Subtotal)
	// 15333 * 11 / 100 = 1686.63 -> 1687
	assert.Equal(t, int64(15333+1687), inv.Total)
}

func TestComputeTotals_NoTax(t *testing.T) {
	inv := Invoice{
		InvoiceRequest: InvoiceRequest{
			Items: []InvoiceLine{{Name: "labor", Rate: 500, Quantity: 2}},
		},
	}
	inv.ComputeTotals()
	assert.Equal(t, inv.Subtotal, inv.Total)
}
