package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{"8.50", 850, false},
		{"0.05", 5, false},
		{"12", 1200, false},
		{"-1.25", -125, false},
		{"0", 0, false},
		{"3.5", 350, false},
		{"3.999", 0, true}, // three decimals is a typo, not a rounding request
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, EINVALID, ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentsString(t *testing.T) {
	assert.Equal(t, "8.00", Cents(800).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "-1.50", Cents(-150).String())
	assert.Equal(t, "0.00", Cents(0).String())
}

func TestParseAmountRoundTrip(t *testing.T) {
	for _, s := range []string{"0.00", "8.50", "123.45", "-2.75"} {
		c, err := ParseAmount(s)
		require.NoError(t, err)
		assert.Equal(t, s, c.String())
	}
}
