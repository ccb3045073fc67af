package models

import "github.com/shopspring/decimal"

// UseNumericAmounts makes decimal amounts encode as plain JSON numbers
// instead of strings. It flips a process-wide decimal setting, so call it
// once at startup before any encoding.
func UseNumericAmounts() {
	decimal.MarshalJSONWithoutQuotes = true
}
