package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation_Validates(t *testing.T) {
	_, err := NewLocation(91, 0)
	assert.ErrorIs(t, err, ErrInvalidLatitude)

	_, err = NewLocation(0, 181)
	assert.ErrorIs(t, err, ErrInvalidLongitude)

	loc, err := NewLocation(52.52, 13.405)
	require.NoError(t, err)
	assert.Equal(t, 52.52, loc.Latitude())
	assert.Equal(t, 13.405, loc.Longitude())
}

func TestMustNewLocation_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNewLocation(200, 0)
	})
}

func TestLocation_HaversineKm_SamePointIsZero(t *testing.T) {
	loc := MustNewLocation(25.2854, 51.5310)
	assert.Equal(t, 0.0, loc.HaversineKm(loc))
}

func TestLocation_HaversineKm_KnownDistance(t *testing.T) {
	moscow := MustNewLocation(55.7558, 37.6173)
	spb := MustNewLocation(59.9343, 30.3351)

	// Moscow <-> St. Petersburg is ~635 km great-circle.
	assert.InDelta(t, 635.0, moscow.HaversineKm(spb), 50.0)
}

func TestLocation_RoundedKey_SymmetricPrecision(t *testing.T) {
	a := MustNewLocation(25.285400001, 51.531000001)
	b := MustNewLocation(25.2854, 51.5310)
	assert.Equal(t, a.RoundedKey(), b.RoundedKey())
}

func TestLocation_MarshalJSON(t *testing.T) {
	loc := MustNewLocation(25.2854, 51.5310)

	out, err := json.Marshal(loc)
	require.NoError(t, err)

	var decoded struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, 25.2854, decoded.Latitude)
	assert.Equal(t, 51.5310, decoded.Longitude)
}
