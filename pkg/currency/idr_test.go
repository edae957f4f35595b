package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatIDR(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{45231000, "Rp 45.231.000"},
		{1000, "Rp 1.000"},
		{999, "Rp 999"},
		{0, "Rp 0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatIDR(tt.amount))
	}
}

func TestFormatIDRDecimal(t *testing.T) {
	assert.Equal(t, "Rp 45.231.000", FormatIDRDecimal(decimal.RequireFromString("45231000.00")))
	assert.Equal(t, "Rp 150.000", FormatIDRDecimal(decimal.RequireFromString("150000")))
}

func TestFormatIDRCompact(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{45231000, "Rp 45,2 jt"},
		{1500000, "Rp 1,5 jt"},
		{2000000000, "Rp 2 M"},
		{3500, "Rp 3,5 rb"},
		{999, "Rp 999"},
		{1200000000000, "Rp 1,2 T"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatIDRCompact(tt.amount))
	}
}

func TestParseIDR(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"Rp 45.231.000", 45231000},
		{"45231000", 45231000},
		{"", 0},
		{"abc", 0},
		{"Rp", 0},
		{"Rp 1.000,-", 1000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseIDR(tt.in))
	}
}
