package tardis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroundTrack(t *testing.T) {
	s := mustSession(t, issLine1, issLine2)
	start := s.Elements().EpochTime()

	points, err := GroundTrack(s, start, start.Add(90*time.Minute), time.Minute)
	require.NoError(t, err)
	require.Len(t, points, 91)

	assert.InDelta(t, 32.7396046, points[0].Geodetic.Latitude, 1e-4)
	assert.Equal(t, start, points[0].Time)
	assert.Equal(t, start.Add(90*time.Minute), points[90].Time)
	for _, p := range points {
		require.NoError(t, p.Err)
		assert.LessOrEqual(t, p.Geodetic.Latitude, 52.0)
		assert.GreaterOrEqual(t, p.Geodetic.Latitude, -52.0)
		assert.InDelta(t, 420, p.Geodetic.Altitude, 30)
	}
}

func TestGroundTrackPartialStep(t *testing.T) {
	s := mustSession(t, issLine1, issLine2)
	start := s.Elements().EpochTime()
	points, err := GroundTrack(s, start, start.Add(10*time.Minute), 3*time.Minute)
	require.NoError(t, err)
	// stop is not on the grid, so the last sample is at 9 minutes
	require.Len(t, points, 4)
	assert.Equal(t, start.Add(9*time.Minute), points[3].Time)
}

func TestGroundTrackKeepsFailures(t *testing.T) {
	el := mustParse(t, "", issLine1, issLine2)
	el.BStar = 1.0
	s, err := NewSession(el)
	require.NoError(t, err)

	start := el.EpochTime()
	points, err := GroundTrack(s, start, start.Add(48*time.Hour), 12*time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 5)
	require.NoError(t, points[0].Err)
	assert.ErrorIs(t, points[4].Err, ErrDecayed)
	assert.Equal(t, Geodetic{}, points[4].Geodetic)
	assert.Equal(t, start.Add(48*time.Hour), points[4].Time)
}

func TestGroundTrackErrors(t *testing.T) {
	s := mustSession(t, issLine1, issLine2)
	start := s.Elements().EpochTime()

	tests := []struct {
		name        string
		s           *Session
		start, stop time.Time
		step        time.Duration
	}{
		{"nil session", nil, start, start.Add(time.Hour), time.Minute},
		{"zero step", s, start, start.Add(time.Hour), 0},
		{"negative step", s, start, start.Add(time.Hour), -time.Minute},
		{"stop before start", s, start, start.Add(-time.Hour), time.Minute},
		{"too many samples", s, start, start.Add(24 * time.Hour), time.Microsecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GroundTrack(tt.s, tt.start, tt.stop, tt.step)
			require.Error(t, err)
		})
	}

	points, err := GroundTrack(s, start, start, time.Minute)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}
