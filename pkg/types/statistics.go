package types

import "time"

// StatRow is one hourly bucket from the historical statistics store. Start is
// the bucket start; the remaining fields are present only when the store
// recorded them.
type StatRow struct {
	Start  time.Time `json:"start"`
	State  *float64  `json:"state,omitempty"`
	Sum    *float64  `json:"sum,omitempty"`
	Change *float64  `json:"change,omitempty"`
	Min    *float64  `json:"min,omitempty"`
	Max    *float64  `json:"max,omitempty"`
	Mean   *float64  `json:"mean,omitempty"`
}
