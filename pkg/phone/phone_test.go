package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer("us")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "national format", input: "(650) 253-0000", want: "+16502530000"},
		{name: "already e164", input: "+16502530000", want: "+16502530000"},
		{name: "surrounding space", input: "  650 253 0000 ", want: "+16502530000"},
		{name: "foreign with prefix", input: "+44 20 7031 3000", want: "+442070313000"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "letters", input: "call me", wantErr: true},
		{name: "too short", input: "12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewNormalizer_Region(t *testing.T) {
	got, err := NewNormalizer("").Normalize("(650) 253-0000")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	got, err = NewNormalizer(" gb ").Normalize("020 7031 3000")
	require.NoError(t, err)
	assert.Equal(t, "+442070313000", got)
}

func TestNormalizer_Canonical(t *testing.T) {
	n := NewNormalizer("US")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "valid national", input: "(650) 253-0000", want: "+16502530000"},
		{name: "valid e164", input: "+16502530000", want: "+16502530000"},
		{name: "short extension kept", input: " 123 ", want: "123"},
		{name: "free text kept", input: "ext. 42", want: "ext. 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Canonical(tt.input))
		})
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "+1 650-253-0000", Display("+16502530000"))
	assert.Equal(t, "not a number", Display("not a number"))
}
