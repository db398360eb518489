// Package dso models Distribution System Operator tariff plans: the fee
// tables, time-of-use schedules, and peak billing strategies published by
// each grid operator.
package dso

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/tariffiq/tariffiq/pkg/types"
)

var (
	ErrUnknownDSO      = errors.New("unknown dso")
	ErrDuplicateDSO    = errors.New("duplicate dso")
	ErrUnknownFuseSize = errors.New("unknown fuse size")
)

// Definition is one grid operator tariff plan. Definitions are built once at
// registry population time and never mutated, so they are safe for concurrent
// readers. Resolved fees are never stored back on the definition: callers
// resolve per evaluation via SelectedFees.
type Definition struct {
	Name     string
	Currency string

	// Fees maps fuse/capacity size to the fee row billed for it.
	Fees map[string]types.Fees

	Schedule  types.TariffSchedule
	PeakModel PeakModel
}

// FuseSizes returns the selectable fuse sizes, numerically when possible.
func (d *Definition) FuseSizes() []string {
	sizes := make([]string, 0, len(d.Fees))
	for size := range d.Fees {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool {
		a, aerr := strconv.Atoi(sizes[i])
		b, berr := strconv.Atoi(sizes[j])
		if aerr == nil && berr == nil {
			return a < b
		}
		return sizes[i] < sizes[j]
	})
	return sizes
}

// SelectedFees resolves the fee row for a fuse size.
func (d *Definition) SelectedFees(fuseSize string) (types.Fees, error) {
	fees, ok := d.Fees[fuseSize]
	if !ok {
		return types.Fees{}, fmt.Errorf("%w: %q for dso %s", ErrUnknownFuseSize, fuseSize, d.Name)
	}
	return fees, nil
}

func (d *Definition) validate() error {
	if d.Name == "" {
		return fmt.Errorf("dso definition missing name")
	}
	if len(d.Fees) == 0 {
		return fmt.Errorf("dso %s has no fee table", d.Name)
	}
	for size, fees := range d.Fees {
		if fees.FixedFee < 0 || fees.TransferFee < 0 || fees.TariffCost < 0 {
			return fmt.Errorf("dso %s has negative fees for fuse size %q", d.Name, size)
		}
	}
	if d.PeakModel == nil {
		return fmt.Errorf("dso %s has no peak billing model", d.Name)
	}
	return nil
}

// hourRange returns the inclusive range [from, to] as a slice for schedule
// tables.
func hourRange(from, to int) []int {
	hours := make([]int, 0, to-from+1)
	for h := from; h <= to; h++ {
		hours = append(hours, h)
	}
	return hours
}
