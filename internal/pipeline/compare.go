// Package pipeline coordinates a comparison run: read and extract the two
// documents, then reconcile them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkmathur/partsrecon/constants"
	"github.com/nkmathur/partsrecon/internal/docread"
	"github.com/nkmathur/partsrecon/internal/entity"
	"github.com/nkmathur/partsrecon/internal/extract"
	"github.com/nkmathur/partsrecon/internal/reconcile"
)

// CompareResult is the outcome of one comparison run.
type CompareResult struct {
	ID            uuid.UUID                     `json:"id"`
	Results       []entity.ReconciliationResult `json:"results"`
	EstimateCount int                           `json:"estimate_count"`
	BillCount     int                           `json:"bill_count"`
	Buckets       map[constants.Bucket]int      `json:"buckets"`
	SameCount     int                           `json:"same_count"`
	ElapsedMS     int64                         `json:"elapsed_ms"`
}

// Comparator runs extraction on both documents, then reconciliation.
type Comparator struct {
	logger    *slog.Logger
	reader    *docread.Reader
	extractor *extract.Extractor
	engine    *reconcile.Engine
}

func NewComparator(logger *slog.Logger, reader *docread.Reader, extractor *extract.Extractor, engine *reconcile.Engine) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	if reader == nil {
		reader = docread.NewReader(docread.Config{}, logger)
	}
	if extractor == nil {
		extractor = extract.NewExtractor(extract.DefaultProfile(), logger)
	}
	if engine == nil {
		engine = reconcile.NewEngine()
	}
	return &Comparator{logger: logger, reader: reader, extractor: extractor, engine: engine}
}

// Compare reads and extracts the estimate and the bill concurrently, then
// reconciles the two record sets. The two extractions are independent and
// share no state; reconciliation starts only after both complete. A failure
// on one side does not corrupt the other side's extraction — the run as a
// whole fails and the error names the failing side.
func (c *Comparator) Compare(ctx context.Context, estimatePath, billPath string) (*CompareResult, error) {
	runID := uuid.New()
	start := time.Now()
	c.logger.Info("compare.start", "run_id", runID, "estimate", estimatePath, "bill", billPath)

	var (
		wg       sync.WaitGroup
		left     []entity.Record
		right    []entity.Record
		leftErr  error
		rightErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		left, leftErr = c.extractSide(ctx, estimatePath)
	}()
	go func() {
		defer wg.Done()
		right, rightErr = c.extractSide(ctx, billPath)
	}()
	wg.Wait()

	if leftErr != nil {
		return nil, fmt.Errorf("estimate: %w", leftErr)
	}
	if rightErr != nil {
		return nil, fmt.Errorf("bill: %w", rightErr)
	}

	results := c.engine.Reconcile(left, right)

	out := &CompareResult{
		ID:            runID,
		Results:       results,
		EstimateCount: len(left),
		BillCount:     len(right),
		Buckets:       map[constants.Bucket]int{},
		ElapsedMS:     time.Since(start).Milliseconds(),
	}
	for _, r := range results {
		if b, ok := constants.BucketForStatus(r.Status); ok {
			out.Buckets[b]++
		} else {
			out.SameCount++
		}
	}

	c.logger.Info("compare.ok",
		"run_id", runID,
		"estimate_records", out.EstimateCount,
		"bill_records", out.BillCount,
		"keys", len(results),
		"same", out.SameCount,
		"elapsed_ms", out.ElapsedMS,
	)
	return out, nil
}

func (c *Comparator) extractSide(ctx context.Context, path string) ([]entity.Record, error) {
	doc, err := c.reader.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return c.extractor.ExtractDocument(doc)
}
