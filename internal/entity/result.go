package entity

import (
	"github.com/shopspring/decimal"

	"github.com/nkmathur/partsrecon/constants"
)

// ReconciliationResult is the outcome for one key across the two documents.
// A nil amount means the key was absent on that side; at least one side is
// always present.
type ReconciliationResult struct {
	Key              string           `json:"key"`
	LeftAmount       *decimal.Decimal `json:"left_amount,omitempty"`
	RightAmount      *decimal.Decimal `json:"right_amount,omitempty"`
	LeftDescription  string           `json:"left_description,omitempty"`
	RightDescription string           `json:"right_description,omitempty"`
	Description      string           `json:"description"`
	Status           constants.Status `json:"status"`
}
