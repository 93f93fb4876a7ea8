// Package bin histograms gap durations into fixed-width time ranges.
package bin

import (
	"fmt"
	"math"

	"github.com/skyline-analytics/adgap/internal/gap"
)

const (
	// Width is the size of every bin in seconds.
	Width = 15

	// DefaultCeiling bounds the bin set when the observed maximum gap is
	// negative, so degenerate data still yields a usable histogram.
	DefaultCeiling = 60
)

// Range is one half-open bin [Low, High). The first bin also captures
// values below zero, so overlapping-session gaps stay visible in the
// output instead of vanishing.
type Range struct {
	Low  int
	High int
}

func (r Range) Label() string {
	return fmt.Sprintf("%d-%d", r.Low, r.High)
}

// Record is the per-device frequency of one gap range.
type Record struct {
	DeviceID  string
	Range     Range
	Frequency int
}

// BuildRanges derives the global bin set for a run: contiguous
// Width-second ranges from 0 up to the first edge strictly above maxGap.
// Every observed gap is guaranteed a bin.
func BuildRanges(maxGap float64) []Range {
	ceiling := DefaultCeiling
	if maxGap >= 0 {
		ceiling = (int(math.Floor(maxGap/Width)) + 1) * Width
	}

	ranges := make([]Range, 0, ceiling/Width)
	for low := 0; low < ceiling; low += Width {
		ranges = append(ranges, Range{Low: low, High: low + Width})
	}
	return ranges
}

// Assign places a gap value in its bin. Values below zero land in the
// lowest bin. ok is false only if the value exceeds every bin, which
// cannot happen for ranges built from the same data.
func Assign(ranges []Range, seconds float64) (Range, bool) {
	if len(ranges) == 0 {
		return Range{}, false
	}
	idx := int(math.Floor(seconds / Width))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(ranges) {
		return Range{}, false
	}
	return ranges[idx], true
}

// Tally drops null gaps and counts the remainder per (device, range).
// No gaps at all yields an empty table, not an error. Combinations with
// zero occurrences are omitted. Rows come out in first-encountered
// order, which keeps downstream tie-breaks deterministic.
func Tally(gaps []gap.Record) ([]Record, error) {
	var values []gap.Record
	maxGap := math.Inf(-1)
	for _, g := range gaps {
		if g.Seconds == nil {
			continue
		}
		values = append(values, g)
		if *g.Seconds > maxGap {
			maxGap = *g.Seconds
		}
	}
	if len(values) == 0 {
		return nil, nil
	}

	ranges := BuildRanges(maxGap)

	type cell struct {
		deviceID string
		r        Range
	}
	counts := make(map[cell]int)
	var order []cell

	for _, g := range values {
		r, ok := Assign(ranges, *g.Seconds)
		if !ok {
			return nil, fmt.Errorf("gap %fs for device %s falls outside the bin set", *g.Seconds, g.Session.DeviceID)
		}
		c := cell{deviceID: g.Session.DeviceID, r: r}
		if _, seen := counts[c]; !seen {
			order = append(order, c)
		}
		counts[c]++
	}

	out := make([]Record, 0, len(order))
	for _, c := range order {
		out = append(out, Record{DeviceID: c.deviceID, Range: c.r, Frequency: counts[c]})
	}
	return out, nil
}
