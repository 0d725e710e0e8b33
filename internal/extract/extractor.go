// Package extract classifies candidate lines as noise or data and recovers
// {key, description, amount} records from the data lines. All heuristics
// are parameterized by a LayoutProfile; a failed line is a silent skip, a
// document with zero records is a reportable (non-fatal) condition.
package extract

import (
	"fmt"
	"iter"
	"log/slog"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/nkmathur/partsrecon/internal/common"
	"github.com/nkmathur/partsrecon/internal/docread"
	"github.com/nkmathur/partsrecon/internal/entity"
	"github.com/nkmathur/partsrecon/internal/tokenize"
)

// A line needs at least key + description + amount to be a candidate.
const minLineTokens = 3

type Extractor struct {
	profile     LayoutProfile
	amountShape *regexp.Regexp
	qtyShape    *regexp.Regexp
	logger      *slog.Logger
}

func NewExtractor(profile LayoutProfile, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if profile.MinKeyLength <= 0 {
		profile.MinKeyLength = DefaultProfile().MinKeyLength
	}
	if profile.FractionDigits <= 0 {
		profile.FractionDigits = DefaultProfile().FractionDigits
	}
	if profile.QuantityFractionDigits <= 0 {
		profile.QuantityFractionDigits = DefaultProfile().QuantityFractionDigits
	}
	if profile.AmountPick == "" {
		profile.AmountPick = "last"
	}
	if profile.YTolerance <= 0 {
		profile.YTolerance = tokenize.DefaultYTolerance
	}
	return &Extractor{
		profile:     profile,
		amountShape: amountPattern(profile.FractionDigits),
		qtyShape:    amountPattern(profile.QuantityFractionDigits),
		logger:      logger,
	}
}

// Profile returns the effective profile after defaulting.
func (e *Extractor) Profile() LayoutProfile { return e.profile }

// ExtractDocument runs extraction over every page of a read document.
// Extraction is a pure function of the document content: identical input
// yields identical records. A document with zero records returns
// common.ErrNoUsableData.
func (e *Extractor) ExtractDocument(doc docread.Document) ([]entity.Record, error) {
	var records []entity.Record
	lines := 0
	for _, page := range doc.Pages {
		var seq iter.Seq[tokenize.Line]
		if len(page.Words) > 0 {
			seq = tokenize.FromWords(page.Words, e.profile.YTolerance)
		} else {
			seq = tokenize.FromLines(page.Lines)
		}
		for line := range seq {
			lines++
			if rec, ok := e.ExtractLine(line); ok {
				records = append(records, rec)
			}
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("document yielded no records over %d lines: %w", lines, common.ErrNoUsableData)
	}
	e.logger.Debug("extract.ok", "lines", lines, "records", len(records))
	return records, nil
}

// ExtractLine applies the rule pipeline to one line. ok is false when the
// line is noise or any rule fails; such lines are skipped, never fatal.
func (e *Extractor) ExtractLine(line tokenize.Line) (entity.Record, bool) {
	tokens := line.Tokens

	if isNoise(line.Text(), e.profile.Stoplist) {
		return entity.Record{}, false
	}
	if len(tokens) < minLineTokens {
		return entity.Record{}, false
	}

	keyIdx := findKey(tokens, e.profile.KeyScanWindow, e.profile.MinKeyLength)
	if keyIdx < 0 {
		return entity.Record{}, false
	}

	var (
		amount    decimal.Decimal
		amountIdx int
		ok        bool
	)
	if e.profile.RateQuantity {
		amount, amountIdx, ok = e.rateTimesQuantity(tokens, keyIdx)
	} else {
		amount, amountIdx, ok = e.singleAmount(tokens, keyIdx)
	}
	if !ok || !amount.IsPositive() {
		return entity.Record{}, false
	}

	return entity.Record{
		Key:         tokens[keyIdx],
		Description: trimDescription(tokens[keyIdx+1 : amountIdx]),
		Amount:      amount,
	}, true
}

// singleAmount locates the amount token in a single-total layout. The
// profile picks the last (default) or first candidate after the key.
func (e *Extractor) singleAmount(tokens []string, keyIdx int) (decimal.Decimal, int, bool) {
	if e.profile.AmountPick == "first" {
		for i := keyIdx + 1; i < len(tokens); i++ {
			if d, ok := parseAmount(tokens[i], e.amountShape); ok {
				return d, i, true
			}
		}
		return decimal.Zero, 0, false
	}
	for i := len(tokens) - 1; i > keyIdx; i-- {
		if d, ok := parseAmount(tokens[i], e.amountShape); ok {
			return d, i, true
		}
	}
	return decimal.Zero, 0, false
}

// rateTimesQuantity handles layouts that encode the amount as rate × qty.
// The quantity is the last token of the quantity shape; the rate is the
// nearest preceding token of the amount shape. The record amount is their
// product rounded to two places, and the description ends before the rate.
func (e *Extractor) rateTimesQuantity(tokens []string, keyIdx int) (decimal.Decimal, int, bool) {
	qtyIdx := -1
	for i := len(tokens) - 1; i > keyIdx; i-- {
		if _, ok := parseAmount(tokens[i], e.qtyShape); ok {
			qtyIdx = i
			break
		}
	}
	if qtyIdx < 0 {
		return decimal.Zero, 0, false
	}
	for i := qtyIdx - 1; i > keyIdx; i-- {
		rate, ok := parseAmount(tokens[i], e.amountShape)
		if !ok {
			continue
		}
		qty, _ := parseAmount(tokens[qtyIdx], e.qtyShape)
		return rate.Mul(qty).Round(2), i, true
	}
	return decimal.Zero, 0, false
}
