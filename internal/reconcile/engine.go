// Package reconcile joins two record collections by key and classifies the
// amount change for every key present on either side.
package reconcile

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nkmathur/partsrecon/constants"
	"github.com/nkmathur/partsrecon/internal/entity"
)

// DefaultEpsilon is the equality tolerance for amount comparison, in
// currency units. It absorbs rounding noise from upstream arithmetic;
// exact equality on floats was the source of spurious mismatches.
var DefaultEpsilon = decimal.NewFromFloat(0.01)

type Engine struct {
	epsilon decimal.Decimal
}

type Option func(*Engine)

// WithEpsilon overrides the amount-equality tolerance. A zero epsilon
// means exact comparison.
func WithEpsilon(eps decimal.Decimal) Option {
	return func(e *Engine) {
		if !eps.IsNegative() {
			e.epsilon = eps
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{epsilon: DefaultEpsilon}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Reconcile produces one result per distinct key across both sides.
// left is the estimate, right is the bill. Inputs are not mutated; results
// copy the fields they need. When a key occurs more than once on a side the
// first occurrence in input order wins — a deliberate, deterministic policy.
// Output is sorted by key.
func (e *Engine) Reconcile(left, right []entity.Record) []entity.ReconciliationResult {
	leftIdx := indexByKey(left)
	rightIdx := indexByKey(right)

	keys := make([]string, 0, len(leftIdx)+len(rightIdx))
	seen := make(map[string]struct{}, len(leftIdx)+len(rightIdx))
	for _, r := range left {
		if _, ok := seen[r.Key]; !ok {
			seen[r.Key] = struct{}{}
			keys = append(keys, r.Key)
		}
	}
	for _, r := range right {
		if _, ok := seen[r.Key]; !ok {
			seen[r.Key] = struct{}{}
			keys = append(keys, r.Key)
		}
	}
	sort.Strings(keys)

	results := make([]entity.ReconciliationResult, 0, len(keys))
	for _, key := range keys {
		l, hasLeft := leftIdx[key]
		r, hasRight := rightIdx[key]
		results = append(results, e.classify(key, l, hasLeft, r, hasRight))
	}
	return results
}

// indexByKey builds the key→record index, keeping the first occurrence.
func indexByKey(records []entity.Record) map[string]entity.Record {
	idx := make(map[string]entity.Record, len(records))
	for _, r := range records {
		if _, ok := idx[r.Key]; !ok {
			idx[r.Key] = r
		}
	}
	return idx
}

func (e *Engine) classify(key string, l entity.Record, hasLeft bool, r entity.Record, hasRight bool) entity.ReconciliationResult {
	res := entity.ReconciliationResult{Key: key}
	switch {
	case !hasLeft:
		amt := r.Amount
		res.RightAmount = &amt
		res.RightDescription = r.Description
		res.Description = r.Description
		res.Status = constants.StatusNew
	case !hasRight:
		amt := l.Amount
		res.LeftAmount = &amt
		res.LeftDescription = l.Description
		res.Description = l.Description
		res.Status = constants.StatusRemoved
	default:
		la, ra := l.Amount, r.Amount
		res.LeftAmount = &la
		res.RightAmount = &ra
		res.LeftDescription = l.Description
		res.RightDescription = r.Description
		res.Description = pickDescription(l.Description, r.Description)
		res.Status = e.compareAmounts(la, ra)
	}
	return res
}

// pickDescription prefers the bill side: bills are finalized documents, so
// their wording is the more authoritative of the two.
func pickDescription(left, right string) string {
	if right != "" {
		return right
	}
	return left
}

func (e *Engine) compareAmounts(left, right decimal.Decimal) constants.Status {
	if right.Sub(left).Abs().Cmp(e.epsilon) <= 0 {
		return constants.StatusSame
	}
	if right.GreaterThan(left) {
		return constants.StatusIncreased
	}
	return constants.StatusReduced
}
