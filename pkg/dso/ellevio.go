package dso

import "github.com/tariffiq/tariffiq/pkg/types"

// Ellevio tariff plans.
// https://www.ellevio.se/abonnemang/elnatspriser/hus/
// https://www.ellevio.se/abonnemang/elnatspriser/fritidshus/
func ellevioDefinitions() []*Definition {
	// Year-round schedule: half tariff overnight (22:00-05:59), full tariff
	// daytime (06:00-21:59). The patterns cover every hour, so the schedule
	// is always active and only the factor varies.
	halfFullSchedule := types.NewTariffSchedule(
		types.MustPattern(0.5, types.TimeFilters{
			Hours: []int{22, 23, 0, 1, 2, 3, 4, 5},
		}),
		types.MustPattern(1.0, types.TimeFilters{
			Hours: hourRange(6, 21),
		}),
	)

	husFees := map[string]types.Fees{
		"16-25": {FixedFee: 4740, TransferFee: 0.07, TariffCost: 81.25},
		"35":    {FixedFee: 11880, TransferFee: 0.07, TariffCost: 81.25},
		"50":    {FixedFee: 18180, TransferFee: 0.07, TariffCost: 81.25},
		"63":    {FixedFee: 26100, TransferFee: 0.07, TariffCost: 81.25},
	}

	return []*Definition{
		{
			Name:      "Ellevio-Hus",
			Currency:  "SEK",
			Fees:      husFees,
			Schedule:  halfFullSchedule,
			PeakModel: AverageOfXHours{Count: 3, Policy: SelectMostExtreme},
		},
		{
			Name:      "Ellevio-Fritidshus",
			Currency:  "SEK",
			Fees:      husFees,
			Schedule:  halfFullSchedule,
			PeakModel: AverageOfXHours{Count: 3, Policy: SelectMostExtreme},
		},
		{
			Name:     "Ellevio-Lagenhet",
			Currency: "SEK",
			Fees: map[string]types.Fees{
				"Default": {FixedFee: 1440, TransferFee: 0.26, TariffCost: 0},
			},
			Schedule:  halfFullSchedule,
			PeakModel: TopNAverage{N: 3},
		},
		{
			// Apartment group plans have no peak component at all.
			Name:     "Ellevio-Lagenhet-Grupp30",
			Currency: "SEK",
			Fees: map[string]types.Fees{
				"Default": {FixedFee: 1320, TransferFee: 0.26, TariffCost: 0},
			},
			Schedule:  types.NewTariffSchedule(),
			PeakModel: TopNAverage{N: 3},
		},
		{
			Name:     "Ellevio-Lagenhet-Grupp60",
			Currency: "SEK",
			Fees: map[string]types.Fees{
				"Default": {FixedFee: 1200, TransferFee: 0.26, TariffCost: 0},
			},
			Schedule:  halfFullSchedule,
			PeakModel: TopNAverage{N: 3},
		},
		{
			Name:     "Ellevio-Lagenhet-Grupp100",
			Currency: "SEK",
			Fees: map[string]types.Fees{
				"Default": {FixedFee: 1080, TransferFee: 0.755, TariffCost: 0},
			},
			Schedule:  halfFullSchedule,
			PeakModel: TopNAverage{N: 3},
		},
	}
}
