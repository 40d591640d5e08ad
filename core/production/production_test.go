package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerCrewRate(t *testing.T) {
	r, err := PerCrewRate(16, 2)
	require.NoError(t, err)
	assert.Equal(t, 8.0, r)
	r, err = PerCrewRate(1.5, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.75, r)
	_, err = PerCrewRate(10, 0)
	assert.Error(t, err)
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 752.0, Remaining(852, 100, 8, 2, 0))
	assert.Equal(t, 720.0, Remaining(852, 100, 8, 2, 2))
	assert.Equal(t, 0.0, Remaining(82, 80, 5, 2, 3))
	assert.Equal(t, 22.0, Remaining(22, 0, 0, 2, 5))
}

func TestMeasuredRate(t *testing.T) {
	r, err := MeasuredRate([]Sample{{Units: 16, Crews: 2}, {Units: 30, Crews: 3}, {Units: 7, Crews: 0}})
	require.NoError(t, err)
	assert.InDelta(t, 9.0, r, 1e-12)

	_, err = MeasuredRate(nil)
	assert.ErrorIs(t, err, ErrNoSamples)
	_, err = MeasuredRate([]Sample{{Units: 4}})
	assert.ErrorIs(t, err, ErrNoSamples)
}
