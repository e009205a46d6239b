package server

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/physiomath/go-physiomath"
)

// storedReport caches the PDF of a report once exported.
type storedReport struct {
	report *physiomath.Report
	mu     sync.Mutex
	pdf    []byte
}

// pdfBytes exports the report once. Concurrent callers wait for the first.
func (sr *storedReport) pdfBytes(ctx context.Context, exp PDFExporter) ([]byte, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if sr.pdf != nil {
		return sr.pdf, nil
	}
	pdf, err := exp.ExportPDF(ctx, sr.report.HTML)
	if err != nil {
		return nil, err
	}
	sr.pdf = pdf
	return pdf, nil
}

// reportStore keeps the most recent reports in memory. The oldest is
// evicted once capacity is reached.
type reportStore struct {
	capacity int
	mu       sync.Mutex
	items    map[uuid.UUID]*storedReport
	order    []uuid.UUID
}

func newReportStore(capacity int) *reportStore {
	return &reportStore{
		capacity: capacity,
		items:    make(map[uuid.UUID]*storedReport, capacity),
	}
}

func (rs *reportStore) put(rep *physiomath.Report) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, ok := rs.items[rep.ID]; ok {
		return
	}
	for len(rs.order) >= rs.capacity {
		delete(rs.items, rs.order[0])
		rs.order = rs.order[1:]
	}
	rs.items[rep.ID] = &storedReport{report: rep}
	rs.order = append(rs.order, rep.ID)
}

func (rs *reportStore) get(id uuid.UUID) (*storedReport, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	sr, ok := rs.items[id]
	return sr, ok
}
