package types

import "time"

// Fees is one row of a DSO fee table, selected by fuse size. FixedFee is an
// annual charge, TransferFee is per kWh, TariffCost is per kW of billed peak.
type Fees struct {
	FixedFee    float64 `json:"fixed_fee"`
	TransferFee float64 `json:"transfer_fee"`
	TariffCost  float64 `json:"tariff_cost"`
}

// ObservedPeak is one billable hourly peak: the bucket start and the rounded
// consumption delta observed in it.
type ObservedPeak struct {
	Start time.Time `json:"start"`
	Value float64   `json:"value"`
}

// CostReport is the flat result of one engine evaluation. The JSON field
// names are part of the contract: presentation sensors bind to them verbatim.
// It is produced fresh on every evaluation and never mutated afterwards.
type CostReport struct {
	TariffActive   bool       `json:"tariff_active"`
	TariffStartsAt *time.Time `json:"tariff_starts_at"`
	TariffEndsAt   *time.Time `json:"tariff_ends_at"`

	FixedCost    float64 `json:"fixed_cost"`
	VariableCost float64 `json:"variable_cost"`
	Peaks        float64 `json:"peaks"`
	PeaksCost    float64 `json:"peaks_cost"`
	TotalDSOCost float64 `json:"total_dso_cost"`

	PredictedConsumption   float64        `json:"predicted_consumption"`
	CurrentHourConsumption float64        `json:"current_hour_consumption"`
	ObservedPeaks          []ObservedPeak `json:"observed_peaks"`

	Fees     Fees   `json:"fees"`
	Currency string `json:"currency"`
	FuseSize string `json:"fuse_size"`
}
