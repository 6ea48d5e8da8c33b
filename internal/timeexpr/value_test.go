package timeexpr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestValueHolds(t *testing.T) {
	t0 := utc(2024, 1, 1, 0, 0)
	assert.True(t, Always().Holds(t0))
	assert.False(t, Never().Holds(t0))

	s := Since(t0)
	assert.False(t, s.Holds(t0.Add(-time.Second)))
	assert.True(t, s.Holds(t0))
	assert.True(t, s.Holds(t0.Add(time.Second)))
}

func TestAndOr(t *testing.T) {
	t0 := utc(2024, 1, 1, 0, 0)
	t1 := t0.Add(time.Hour)

	require.Equal(t, Never(), And(Never(), Always()))
	require.Equal(t, Since(t1), And(Since(t0), Since(t1)))
	require.Equal(t, Since(t0), Or(Since(t0), Since(t1)))
	require.Equal(t, Always(), Or(Always(), Never()))
	require.Equal(t, Since(t0), And(Always(), Since(t0)))
}

func TestAdd(t *testing.T) {
	t0 := utc(2024, 1, 1, 0, 0)
	require.Equal(t, Always(), Add(Always(), time.Hour))
	require.Equal(t, Never(), Add(Never(), time.Hour))
	require.Equal(t, Since(t0.Add(time.Hour)), Add(Since(t0), time.Hour))
}
