package tardis

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingRecorder struct {
	mu               sync.Mutex
	recordOK         int
	recordFailed     int
	batches          int
	batchOK, batchKO int
}

func (r *countingRecorder) ObserveRecord(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.recordOK++
	} else {
		r.recordFailed++
	}
}

func (r *countingRecorder) ObserveBatch(_ time.Duration, ok, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
	r.batchOK += ok
	r.batchKO += failed
}

func TestReadCatalog(t *testing.T) {
	input := strings.Join([]string{
		"ISS (ZARYA)", issLine1, issLine2,
		"BROKEN", issLine1,
		"VANGUARD 1", vanguardLine1, vanguardLine2,
		"",
		"0 DEEP", deepLine1, deepLine2,
		"CORRUPT", issLine1[:68] + "5", issLine2,
		"ISS AGAIN", issOMMLine1, issOMMLine2,
		molniyaLine1 + "   ", molniyaLine2,
		"ORPHAN",
	}, "\r\n")

	core, logs := observer.New(zap.WarnLevel)
	rec := &countingRecorder{}
	c, err := ReadCatalog(strings.NewReader(input), WithLogger(zap.New(core)), WithRecorder(rec))
	require.NoError(t, err)

	require.Equal(t, 5, c.Len())
	names := make([]string, 0, c.Len())
	indexes := make([]int, 0, c.Len())
	for _, e := range c.Entries {
		names = append(names, e.Elements.Name)
		indexes = append(indexes, e.Index)
		require.NotNil(t, e.Session)
	}
	assert.Equal(t, []string{"ISS (ZARYA)", "VANGUARD 1", "DEEP", "ISS AGAIN", ""}, names)
	assert.Equal(t, []int{0, 2, 3, 5, 6}, indexes)

	require.Len(t, c.Failures, 3)
	assert.Equal(t, 1, c.Failures[0].Index)
	assert.Equal(t, "BROKEN", c.Failures[0].Name)
	assert.ErrorIs(t, c.Failures[0], ErrLineCount)
	assert.Contains(t, c.Failures[0].Error(), "missing line 2")
	assert.Equal(t, "CORRUPT", c.Failures[1].Name)
	assert.ErrorIs(t, c.Failures[1], ErrChecksum)
	assert.Equal(t, 7, c.Failures[2].Index)
	assert.Equal(t, "ORPHAN", c.Failures[2].Name)

	assert.Equal(t, 3, logs.FilterMessage("skipping catalog record").Len())
	assert.Equal(t, 5, rec.recordOK)
	assert.Equal(t, 3, rec.recordFailed)

	e, ok := c.Lookup(25544)
	require.True(t, ok)
	assert.Equal(t, "ISS (ZARYA)", e.Elements.Name)
	_, ok = c.Lookup(99999)
	assert.False(t, ok)
}

func TestReadCatalogMissingLine1(t *testing.T) {
	c, err := ReadCatalog(strings.NewReader(issLine2 + "\n" + vanguardLine1 + "\n" + vanguardLine2 + "\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	require.Len(t, c.Failures, 1)
	assert.ErrorIs(t, c.Failures[0], ErrLineCount)
	assert.Equal(t, "record 0: "+c.Failures[0].Err.Error(), c.Failures[0].Error())
}

func TestReadCatalogSessionOptions(t *testing.T) {
	c, err := ReadCatalog(strings.NewReader(vanguardLine1+"\n"+vanguardLine2),
		WithSessionOptions(WithGravityModel(WGS84), WithOpsMode(OpsAFSPC)))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	s := c.Entries[0].Session
	assert.Equal(t, WGS84, s.GravityModel())
	assert.Equal(t, OpsAFSPC, s.OpsMode())
}

const ommCatalog = `[
{"OBJECT_NAME":"ISS (ZARYA)","OBJECT_ID":"1998-067A","EPOCH":"2025-05-26T13:06:57.824640","MEAN_MOTION":15.4975272,"ECCENTRICITY":0.0002241,"INCLINATION":51.6382,"RA_OF_ASC_NODE":54.2937,"ARG_OF_PERICENTER":147.4648,"MEAN_ANOMALY":271.6158,"EPHEMERIS_TYPE":0,"CLASSIFICATION_TYPE":"U","NORAD_CAT_ID":25544,"ELEMENT_SET_NO":999,"REV_AT_EPOCH":51180,"BSTAR":0.00019155,"MEAN_MOTION_DOT":0.00010397,"MEAN_MOTION_DDOT":0},
{"OBJECT_NAME":"HIGH DRAG","OBJECT_ID":"1998-067B","EPOCH":"2025-05-26T13:06:57.824640","MEAN_MOTION":15.4975272,"ECCENTRICITY":0.0002241,"INCLINATION":51.6382,"RA_OF_ASC_NODE":54.2937,"ARG_OF_PERICENTER":147.4648,"MEAN_ANOMALY":271.6158,"EPHEMERIS_TYPE":0,"CLASSIFICATION_TYPE":"U","NORAD_CAT_ID":99001,"ELEMENT_SET_NO":999,"REV_AT_EPOCH":51180,"BSTAR":1.0,"MEAN_MOTION_DOT":0.00010397,"MEAN_MOTION_DDOT":0},
{"OBJECT_NAME":"HYPERBOLIC","OBJECT_ID":"1998-067C","EPOCH":"2025-05-26T13:06:57.824640","MEAN_MOTION":15.4975272,"ECCENTRICITY":1.5,"INCLINATION":51.6382,"RA_OF_ASC_NODE":54.2937,"ARG_OF_PERICENTER":147.4648,"MEAN_ANOMALY":271.6158,"EPHEMERIS_TYPE":0,"CLASSIFICATION_TYPE":"U","NORAD_CAT_ID":99002,"ELEMENT_SET_NO":999,"REV_AT_EPOCH":51180,"BSTAR":0.0001,"MEAN_MOTION_DOT":0,"MEAN_MOTION_DDOT":0},
{"OBJECT_NAME":"CSS (TIANHE)","OBJECT_ID":"2021-035A","EPOCH":"2025-05-25T23:00:12.248640","MEAN_MOTION":15.62412324,"ECCENTRICITY":0.0005017,"INCLINATION":41.463,"RA_OF_ASC_NODE":155.4996,"ARG_OF_PERICENTER":337.345,"MEAN_ANOMALY":22.7167,"EPHEMERIS_TYPE":0,"CLASSIFICATION_TYPE":"U","NORAD_CAT_ID":48274,"ELEMENT_SET_NO":999,"REV_AT_EPOCH":23268,"BSTAR":0.00015624,"MEAN_MOTION_DOT":0.00013949,"MEAN_MOTION_DDOT":0}
]`

func TestCatalogFromOMM(t *testing.T) {
	rec := &countingRecorder{}
	c, err := CatalogFromOMM([]byte(ommCatalog), WithRecorder(rec))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	require.Len(t, c.Failures, 1)
	assert.Equal(t, 2, c.Failures[0].Index)
	assert.Equal(t, "HYPERBOLIC", c.Failures[0].Name)
	assert.ErrorIs(t, c.Failures[0], ErrOutOfRange)
	assert.Equal(t, 3, rec.recordOK)
	assert.Equal(t, 1, rec.recordFailed)

	_, err = CatalogFromOMM([]byte(`{"OBJECT_NAME":`))
	require.Error(t, err)
}

func TestPropagateAll(t *testing.T) {
	rec := &countingRecorder{}
	c, err := CatalogFromOMM([]byte(ommCatalog), WithRecorder(rec), WithWorkers(2))
	require.NoError(t, err)

	at := c.Entries[0].Elements.EpochTime().Add(24 * time.Hour)
	results, err := c.PropagateAll(context.Background(), at)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Same(t, c.Entries[i], r.Entry)
	}

	require.NoError(t, results[0].Err)
	want, err := c.Entries[0].Session.PropagateAt(at)
	require.NoError(t, err)
	assert.Equal(t, want, results[0].State)
	assert.InDelta(t, 1440, results[0].State.MinutesSinceEpoch, 1e-6)

	// one decaying satellite does not affect the others
	assert.ErrorIs(t, results[1].Err, ErrDecayed)
	require.NoError(t, results[2].Err)

	assert.Equal(t, 1, rec.batches)
	assert.Equal(t, 2, rec.batchOK)
	assert.Equal(t, 1, rec.batchKO)
}

func TestPropagateAllCancelled(t *testing.T) {
	rec := &countingRecorder{}
	c, err := ReadCatalog(strings.NewReader(strings.Join([]string{
		issLine1, issLine2, vanguardLine1, vanguardLine2, geoLine1, geoLine2,
	}, "\n")), WithRecorder(rec))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := c.PropagateAll(ctx, time.Now())
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Same(t, c.Entries[i], r.Entry)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Equal(t, 3, rec.batchKO)
}

func TestPropagateAllEmpty(t *testing.T) {
	c, err := ReadCatalog(strings.NewReader(""))
	require.NoError(t, err)
	results, err := c.PropagateAll(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, results)
}
