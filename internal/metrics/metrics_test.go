package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/chiadex/chiadex/internal/chaindb"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestIngesterRecords(t *testing.T) {
	m := NewIngester()
	start := time.Now().Add(-time.Second)

	if inc := delta(t, ingestBlocksTotal.WithLabelValues("success"), func() {
		m.ObserveBlock(nil, 3, start)
	}); inc != 1 {
		t.Fatalf("expected success counter increment, got %v", inc)
	}

	if inc := delta(t, ingestBlocksTotal.WithLabelValues("rejected"), func() {
		m.ObserveBlock(&chaindb.SequenceError{Height: 5, Want: 2}, 0, start)
	}); inc != 1 {
		t.Fatalf("expected rejected counter increment for sequence error, got %v", inc)
	}

	if inc := delta(t, ingestBlocksTotal.WithLabelValues("rejected"), func() {
		m.ObserveBlock(&chaindb.ConflictError{Reason: "coin already spent"}, 0, start)
	}); inc != 1 {
		t.Fatalf("expected rejected counter increment for conflict, got %v", inc)
	}

	if inc := delta(t, ingestBlocksTotal.WithLabelValues("error"), func() {
		m.ObserveBlock(errors.New("boom"), 0, start)
	}); inc != 1 {
		t.Fatalf("expected error counter increment, got %v", inc)
	}

	m.SetPeakHeight(42)
	if v := testutil.ToFloat64(ingestPeakHeight); v != 42 {
		t.Fatalf("peak height gauge = %v", v)
	}
}

func TestObserveRequestLabelsUnmatched(t *testing.T) {
	start := time.Now().Add(-10 * time.Millisecond)

	if inc := delta(t, httpRequestsTotal.WithLabelValues("unmatched", "GET", "404"), func() {
		ObserveRequest("", "GET", 404, start)
	}); inc != 1 {
		t.Fatalf("expected unmatched counter increment, got %v", inc)
	}

	if inc := delta(t, httpRequestsTotal.WithLabelValues("/blocks", "GET", "200"), func() {
		ObserveRequest("/blocks", "GET", 200, start)
	}); inc != 1 {
		t.Fatalf("expected route counter increment, got %v", inc)
	}
}
