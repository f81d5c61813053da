package requirement

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"land_records", "Land documents/tenancy proof"},
		{"aadhar_card", "Aadhaar card"},
		{"crop_insurance-receipt", "Crop Insurance Receipt"},
		{"  soil__health_card ", "Soil Health Card"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.in))
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("plain strings keep order", func(t *testing.T) {
		got, err := Resolve([]byte(`["bank_passbook","aadhar_card","kisan_credit_card"]`))
		require.NoError(t, err)
		assert.Equal(t, Set{
			{Type: "bank_passbook", Label: "Bank passbook"},
			{Type: "aadhar_card", Label: "Aadhaar card"},
			{Type: "kisan_credit_card", Label: "Kisan Credit Card"},
		}, got)
	})

	t.Run("descriptor objects", func(t *testing.T) {
		got, err := Resolve([]byte(`[
			{"type":"land_records"},
			{"document_type":"soil_card","label":"Soil health card"},
			{"code":"pan_card","display_name":"PAN"},
			{"name":"photo"}
		]`))
		require.NoError(t, err)
		assert.Equal(t, Set{
			{Type: "land_records", Label: "Land documents/tenancy proof"},
			{Type: "soil_card", Label: "Soil health card"},
			{Type: "pan_card", Label: "PAN"},
			{Type: "photo", Label: "Passport size photograph"},
		}, got)
	})

	t.Run("duplicates collapse to first", func(t *testing.T) {
		got, err := Resolve([]byte(`["photo",{"type":"photo","label":"Other"},"photo"]`))
		require.NoError(t, err)
		assert.Equal(t, Set{{Type: "photo", Label: "Passport size photograph"}}, got)
	})

	t.Run("empty and null", func(t *testing.T) {
		for _, in := range []string{"", "null", "[]"} {
			got, err := Resolve([]byte(in))
			require.NoError(t, err)
			assert.Empty(t, got)
		}
	})

	t.Run("invalid entries", func(t *testing.T) {
		_, err := Resolve([]byte(`[42]`))
		assert.ErrorIs(t, err, ErrInvalidEntry)

		_, err = Resolve([]byte(`{"type":"photo"}`))
		assert.Error(t, err)
	})
}

func TestResolveIdempotent(t *testing.T) {
	in := []byte(`["aadhar_card",{"type":"custom-permit","label":"Village permit"},"shg_membership"]`)

	first, err := Resolve(in)
	require.NoError(t, err)
	second, err := Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Feeding the normalized output back in is also a fixed point.
	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	again, err := Resolve(encoded)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestSet(t *testing.T) {
	s := FromTypes("aadhar_card", "bank_passbook", "land_records")

	assert.True(t, s.Has("bank_passbook"))
	assert.False(t, s.Has("pan_card"))
	assert.Equal(t, "Bank passbook", s.Label("bank_passbook"))
	assert.Equal(t, "Ration Card", s.Label("ration_card"))

	missing := s.Missing(map[string]bool{"bank_passbook": true})
	assert.Equal(t, []string{"Aadhaar card", "Land documents/tenancy proof"}, missing.Labels())
	assert.Empty(t, s.Missing(map[string]bool{"aadhar_card": true, "bank_passbook": true, "land_records": true}))
}
