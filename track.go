package tardis

import (
	"errors"
	"fmt"
	"time"
)

// maxTrackPoints bounds the number of samples a single GroundTrack call produces.
const maxTrackPoints = 1 << 20

// TrackPoint is one sample of a ground track. When Err is set the
// propagation failed at Time and Geodetic is the zero value.
type TrackPoint struct {
	Time     time.Time
	Geodetic Geodetic
	Err      error
}

// GroundTrack samples the sub-satellite point of s from start to stop
// inclusive, every step. A failed sample is kept with its error and sampling
// continues.
func GroundTrack(s *Session, start, stop time.Time, step time.Duration) ([]TrackPoint, error) {
	if s == nil {
		return nil, errors.New("ground track: nil session")
	}
	if step <= 0 {
		return nil, fmt.Errorf("ground track: step must be positive, got %s", step)
	}
	if stop.Before(start) {
		return nil, fmt.Errorf("ground track: stop %s before start %s", stop.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	n := int(stop.Sub(start)/step) + 1
	if n > maxTrackPoints {
		return nil, fmt.Errorf("ground track: %d samples exceeds the limit of %d", n, maxTrackPoints)
	}

	points := make([]TrackPoint, 0, n)
	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * step)
		sv, err := s.PropagateAt(t)
		if err != nil {
			points = append(points, TrackPoint{Time: t, Err: err})
			continue
		}
		points = append(points, TrackPoint{Time: t, Geodetic: sv.Geodetic()})
	}
	return points, nil
}
