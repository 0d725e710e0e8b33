package entity

import "github.com/shopspring/decimal"

// Record is one extracted line item. It is created once by the extractor
// and never mutated afterwards; the reconciliation engine copies the fields
// it needs rather than holding references.
type Record struct {
	Key         string          `json:"key"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Word is a positioned token produced by the document reader: the text of
// one whitespace-delimited word together with its bounding box on the page.
type Word struct {
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	Text string  `json:"text"`
}
