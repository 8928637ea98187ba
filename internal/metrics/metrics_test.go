package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhenakh/tardis"
)

var _ tardis.Recorder = (*Recorder)(nil)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.ObserveRecord(true)
	r.ObserveRecord(true)
	r.ObserveRecord(false)
	r.ObserveBatch(250*time.Millisecond, 5, 2)
	r.ObserveBatch(time.Second, 1, 0)
	r.SetCatalogSize(6)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.records.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.records.WithLabelValues("failed")))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.propagations.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.propagations.WithLabelValues("failed")))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.catalogSize))
	assert.Equal(t, 1, testutil.CollectAndCount(r.batchDuration))
}

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
}

func TestCatalogWiring(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	const input = `ISS (ZARYA)
1 25544U 98067A   25138.37048074  .00007749  00000+0  14567-3 0  9994
2 25544  51.6369  94.7823 0002558 120.7586  15.7840 15.49587957510533
BROKEN
1 25544U 98067A   25138.37048074  .00007749  00000+0  14567-3 0  9990
2 25544  51.6369  94.7823 0002558 120.7586  15.7840 15.49587957510533
`
	c, err := tardis.ReadCatalog(strings.NewReader(input), tardis.WithRecorder(r))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	_, err = c.PropagateAll(context.Background(), c.Entries[0].Elements.EpochTime())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.records.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.records.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.propagations.WithLabelValues("ok")))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)
	r.ObserveRecord(true)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tardis_catalog_records_total{result="ok"} 1`)
}
