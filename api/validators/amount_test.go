package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{name: "whole units", raw: "10", want: 1000},
		{name: "cents", raw: "12.34", want: 1234},
		{name: "zero", raw: "0", want: 0},
		{name: "trailing zeros", raw: "5.50", want: 550},
		{name: "whitespace", raw: " 1.25 ", want: 125},
		{name: "empty", raw: "", wantErr: true},
		{name: "not a number", raw: "ten", wantErr: true},
		{name: "negative", raw: "-1.00", wantErr: true},
		{name: "sub cent", raw: "0.001", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmountCents("attached_amount", tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "12.34", FormatCents(1234))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "0.09", FormatCents(9))
	assert.Equal(t, "100.00", FormatCents(10000))
}
