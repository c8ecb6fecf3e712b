package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID(" 64B7F1C2A9E4D3B2C1A0F9E8 ")
	require.NoError(t, err)
	assert.Equal(t, UserID("64b7f1c2a9e4d3b2c1a0f9e8"), id)
	assert.Equal(t, "64b7f1c2a9e4d3b2c1a0f9e8", id.ObjectID().Hex())

	for _, bad := range []string{"", "42", "u1", "64b7f1c2a9e4d3b2c1a0f9ez", "64b7f1c2a9e4d3b2c1a0f9e8aa"} {
		_, err := ParseUserID(bad)
		assert.Error(t, err, bad)
	}
}

func TestPersonalInfoComplete(t *testing.T) {
	name, gender := "Asha", "female"
	h, w, a, b := 170.0, 65.0, 25.0, 22.0
	info := &PersonalInfo{Name: &name, Height: &h, Weight: &w, Age: &a, Gender: &gender, BFP: &b}
	assert.True(t, info.Complete())

	p := info.Profile("64b7f1c2a9e4d3b2c1a0f9e8")
	assert.Equal(t, Profile{ID: "64b7f1c2a9e4d3b2c1a0f9e8", Name: "Asha", Height: 170, Weight: 65, Age: 25, Gender: "female", BFP: 22}, *p)

	info.Gender = nil
	assert.False(t, info.Complete())

	var missing *PersonalInfo
	assert.False(t, missing.Complete())
}
