package tardis

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Recorder receives ingestion and propagation counts. It must be safe for
// concurrent use.
type Recorder interface {
	// ObserveRecord is called once per catalog record.
	ObserveRecord(ok bool)
	// ObserveBatch is called after each PropagateAll.
	ObserveBatch(d time.Duration, ok, failed int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRecord(bool) {}
func (nopRecorder) ObserveBatch(time.Duration, int, int) {}

// CatalogOption configures catalog ingestion and batch propagation.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	logger   *zap.Logger
	recorder Recorder
	workers  int
	session  []Option
}

// WithLogger sets the logger used to report skipped records and failed
// propagations. The default discards everything.
func WithLogger(l *zap.Logger) CatalogOption {
	return func(o *catalogOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) CatalogOption {
	return func(o *catalogOptions) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithWorkers bounds the number of concurrent propagations in PropagateAll.
// Values below one select GOMAXPROCS.
func WithWorkers(n int) CatalogOption {
	return func(o *catalogOptions) { o.workers = n }
}

// WithSessionOptions passes options to every NewSession call.
func WithSessionOptions(opts ...Option) CatalogOption {
	return func(o *catalogOptions) { o.session = append(o.session, opts...) }
}

// Entry is one successfully ingested satellite.
type Entry struct {
	Index    int // position of the record in the input
	Elements *OrbitalElements
	Session  *Session
}

// RecordError describes a record that could not be ingested.
type RecordError struct {
	Index int
	Name  string
	Err   error
}

func (e RecordError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("record %d (%s): %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// Catalog is a set of sessions built from one input. It is read-only after
// construction.
type Catalog struct {
	Entries  []*Entry
	Failures []RecordError

	byNumber map[int]*Entry
	opts     catalogOptions
}

func newCatalog(opts []CatalogOption) *Catalog {
	o := catalogOptions{logger: zap.NewNop(), recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return &Catalog{byNumber: make(map[int]*Entry), opts: o}
}

// add creates a session for el, or records why that failed.
func (c *Catalog) add(index int, name string, el *OrbitalElements, err error) {
	if err == nil {
		var s *Session
		s, err = NewSession(el, c.opts.session...)
		if err == nil {
			e := &Entry{Index: index, Elements: el, Session: s}
			c.Entries = append(c.Entries, e)
			if _, dup := c.byNumber[el.CatalogNumber]; !dup {
				c.byNumber[el.CatalogNumber] = e
			}
			c.opts.recorder.ObserveRecord(true)
			return
		}
	}
	c.Failures = append(c.Failures, RecordError{Index: index, Name: name, Err: err})
	c.opts.recorder.ObserveRecord(false)
	c.opts.logger.Warn("skipping catalog record",
		zap.Int("index", index),
		zap.String("name", name),
		zap.Error(err),
	)
}

func isTLELine(line string, n byte) bool {
	return len(line) >= 2 && line[0] == n && line[1] == ' '
}

// ReadCatalog reads two- or three-line element sets from r. Records that do
// not parse or cannot be propagated are collected in Failures; only read
// errors are returned.
func ReadCatalog(r io.Reader, opts ...CatalogOption) (*Catalog, error) {
	c := newCatalog(opts)
	scanner := bufio.NewScanner(r)

	var name, line1 string
	index := 0
	flush := func(err error) {
		c.add(index, cleanName(name), nil, err)
		index++
		name, line1 = "", ""
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch {
		case line1 != "" && isTLELine(line, '2'):
			el, err := ParseTLELines(name, line1, line)
			c.add(index, cleanName(name), el, err)
			index++
			name, line1 = "", ""
		case line1 != "":
			// line 1 not followed by line 2; the current line starts the next record
			flush(&ParseError{Line: 2, Kind: LineCount, Value: "missing line 2"})
			if isTLELine(line, '1') {
				line1 = line
			} else {
				name = line
			}
		case isTLELine(line, '1'):
			line1 = line
		case isTLELine(line, '2'):
			flush(&ParseError{Line: 1, Kind: LineCount, Value: "missing line 1"})
		default:
			if name != "" {
				flush(&ParseError{Line: 1, Kind: LineCount, Value: "name without element lines"})
			}
			name = line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	switch {
	case line1 != "":
		flush(&ParseError{Line: 2, Kind: LineCount, Value: "missing line 2"})
	case name != "":
		flush(&ParseError{Line: 1, Kind: LineCount, Value: "name without element lines"})
	}

	c.opts.logger.Debug("catalog loaded",
		zap.Int("entries", len(c.Entries)),
		zap.Int("failures", len(c.Failures)),
	)
	return c, nil
}

// CatalogFromOMM builds a catalog from OMM JSON, an array or a single object.
// Malformed JSON is returned as an error; invalid messages become Failures.
func CatalogFromOMM(data []byte, opts ...CatalogOption) (*Catalog, error) {
	omms, err := ParseOMM(data)
	if err != nil {
		return nil, err
	}
	c := newCatalog(opts)
	for i := range omms {
		el, err := omms[i].Elements()
		c.add(i, strings.TrimSpace(omms[i].ObjectName), el, err)
	}
	return c, nil
}

// Lookup returns the first entry with the given catalog number.
func (c *Catalog) Lookup(catalogNumber int) (*Entry, bool) {
	e, ok := c.byNumber[catalogNumber]
	return e, ok
}

// Len returns the number of ingested entries.
func (c *Catalog) Len() int { return len(c.Entries) }

// Result is the outcome of propagating one entry.
type Result struct {
	Entry *Entry
	State StateVector
	Err   error
}

// PropagateAll propagates every entry to t using at most the configured
// number of workers. One entry failing does not affect the others. When ctx
// is cancelled no new work is started, unscheduled entries carry the context
// error and that error is returned.
func (c *Catalog) PropagateAll(ctx context.Context, t time.Time) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(c.Entries))
	ran := make([]bool, len(c.Entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.workers)
	for i, e := range c.Entries {
		i, e := i, e
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sv, err := e.Session.PropagateAt(t)
			results[i] = Result{Entry: e, State: sv, Err: err}
			ran[i] = true
			return nil
		})
	}
	err := g.Wait()
	for i := range ran {
		if !ran[i] && err == nil {
			err = ctx.Err()
		}
	}

	ok, failed := 0, 0
	for i := range results {
		r := &results[i]
		if !ran[i] {
			*r = Result{Entry: c.Entries[i], Err: err}
		}
		if r.Err != nil {
			failed++
			c.opts.logger.Debug("propagation failed",
				zap.Int("catalog_number", r.Entry.Elements.CatalogNumber),
				zap.Error(r.Err),
			)
			continue
		}
		ok++
	}
	c.opts.recorder.ObserveBatch(time.Since(start), ok, failed)
	return results, err
}
