package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundCents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already two places", "10.25", "10.25"},
		{"half rounds up", "10.255", "10.26"},
		{"below half rounds down", "10.254", "10.25"},
		{"long fraction", "83.333333", "83.33"},
		{"integer", "100", "100"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := decimal.NewFromString(tt.input)
			assert.NoError(t, err)
			assert.True(t, RoundCents(d).Equal(decimal.RequireFromString(tt.want)),
				"got %s", RoundCents(d))
		})
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "42.50", "42.5", false},
		{"euro symbol", "€42.50", "42.5", false},
		{"whitespace", "  13.37 ", "13.37", false},
		{"rounds to cents", "9.999", "10", false},
		{"empty", "", "", true},
		{"garbage", "ten euros", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), "got %s", d)
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "€83.33", Format(decimal.RequireFromString("83.33")))
	assert.Equal(t, "€100.00", Format(decimal.NewFromInt(100)))
}
