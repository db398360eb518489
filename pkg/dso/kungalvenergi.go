package dso

import "github.com/tariffiq/tariffiq/pkg/types"

// Kungälv Energi tariff plans.
// https://www.kungalvenergi.se/elnat/ny-effekttaxa/
func kungalvEnergiDefinitions() []*Definition {
	// Effect tariff applies November through March, 07:00-20:59, every day.
	standardSchedule := types.NewTariffSchedule(
		types.MustPattern(1.0, types.TimeFilters{
			Months: []int{1, 2, 3, 11, 12},
			Hours:  hourRange(7, 20),
		}),
	)

	return []*Definition{
		{
			Name:     "KungalvEnergi-Standard",
			Currency: "SEK",
			Fees: map[string]types.Fees{
				"16": {FixedFee: 4230, TransferFee: 0.5266, TariffCost: 57.17},
				"20": {FixedFee: 5154, TransferFee: 0.5266, TariffCost: 57.17},
				"25": {FixedFee: 6309, TransferFee: 0.5266, TariffCost: 57.17},
				"35": {FixedFee: 8620, TransferFee: 0.5266, TariffCost: 57.17},
				"50": {FixedFee: 12086, TransferFee: 0.5266, TariffCost: 57.17},
				"63": {FixedFee: 15090, TransferFee: 0.5266, TariffCost: 57.17},
			},
			Schedule:  standardSchedule,
			PeakModel: TopNAverage{N: 3},
		},
		{
			// Apartment plan: no effect tariff, transfer fee only.
			Name:     "KungalvEnergi-Lagenhet",
			Currency: "SEK",
			Fees: map[string]types.Fees{
				"16": {FixedFee: 2479, TransferFee: 0.6963, TariffCost: 0},
			},
			Schedule:  types.NewTariffSchedule(),
			PeakModel: TopNAverage{N: 3},
		},
	}
}
