package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayazaki/hakoba/internal/platform/apperr"
)

func TestCheckAdjustedRows(t *testing.T) {
	assert.NoError(t, checkAdjustedRows(3, 3))
	assert.NoError(t, checkAdjustedRows(0, 0))
}

// A count adjustment that misses a referenced catalog row is corrupt derived
// state, not a missing resource: it must abort as INVARIANT_VIOLATION.
func TestCheckAdjustedRows_ShortfallIsInvariant(t *testing.T) {
	err := checkAdjustedRows(2, 3)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INVARIANT_VIOLATION", ae.Code)
	assert.False(t, ae.Retryable)
}

func TestCountDeltas(t *testing.T) {
	ids := map[string]int64{"sunset": 1, "beach": 2}

	up := CountDeltas(ids, 1)
	assert.Equal(t, map[int64]int{1: 1, 2: 1}, up)

	down := CountDeltas(ids, -1)
	assert.Equal(t, map[int64]int{1: -1, 2: -1}, down)
}
