// Package classify turns per-device gap-range frequencies into a
// subscription-type verdict.
package classify

import (
	"math"
	"sort"
	"strings"

	"github.com/skyline-analytics/adgap/internal/bin"
)

// Subscription types, the classifier's verdict enumeration.
const (
	TypeAdSupported      = "ad_supported"
	TypeAdFree           = "ad_free"
	TypeMixedOrUncertain = "mixed_or_uncertain"
	TypeInsufficientData = "insufficient_data"
)

// AdGapUpperBound marks a bin as ad-like when its high edge is at or
// below this many seconds. 60s is an empirical proxy for an ad break.
const AdGapUpperBound = 60

// Params are the tunable classification thresholds.
type Params struct {
	AdThreshold          int     // minimum absolute count of ad-like gaps
	AdFrequencyThreshold float64 // minimum proportion of ad-like gaps
}

func DefaultParams() Params {
	return Params{AdThreshold: 3, AdFrequencyThreshold: 0.6}
}

// Verdict is the classification result for one device.
type Verdict struct {
	DeviceID         string
	SubscriptionType string
	TotalGaps        int
	AdLikeGaps       int
	LongGaps         int
	AdGapProportion  float64  // rounded to 3 decimals
	MostCommonRanges []string // up to 3 labels, descending frequency
}

// MostCommonDisplay renders the top ranges as a single delimited string
// for flat exports.
func (v Verdict) MostCommonDisplay() string {
	return strings.Join(v.MostCommonRanges, ", ")
}

// Classify evaluates every device present in the frequency table.
// Devices come out in first-appearance order.
func Classify(rows []bin.Record, p Params) []Verdict {
	byDevice := make(map[string][]bin.Record)
	var order []string
	for _, r := range rows {
		if _, seen := byDevice[r.DeviceID]; !seen {
			order = append(order, r.DeviceID)
		}
		byDevice[r.DeviceID] = append(byDevice[r.DeviceID], r)
	}

	verdicts := make([]Verdict, 0, len(order))
	for _, device := range order {
		verdicts = append(verdicts, classifyDevice(device, byDevice[device], p))
	}
	return verdicts
}

func classifyDevice(device string, rows []bin.Record, p Params) Verdict {
	v := Verdict{DeviceID: device}

	for _, r := range rows {
		v.TotalGaps += r.Frequency
		if r.Range.High <= AdGapUpperBound {
			v.AdLikeGaps += r.Frequency
		} else {
			v.LongGaps += r.Frequency
		}
	}

	proportion := 0.0
	if v.TotalGaps > 0 {
		proportion = float64(v.AdLikeGaps) / float64(v.TotalGaps)
	}
	v.AdGapProportion = math.Round(proportion*1000) / 1000

	// Rules are ordered; the first match wins.
	switch {
	case v.TotalGaps == 0:
		v.SubscriptionType = TypeInsufficientData
	case v.AdLikeGaps >= p.AdThreshold && proportion >= p.AdFrequencyThreshold:
		v.SubscriptionType = TypeAdSupported
	case proportion < 0.3 && v.LongGaps > v.AdLikeGaps:
		v.SubscriptionType = TypeAdFree
	case v.AdLikeGaps < 2:
		v.SubscriptionType = TypeAdFree
	default:
		v.SubscriptionType = TypeMixedOrUncertain
	}

	v.MostCommonRanges = mostCommonRanges(rows, 3)
	return v
}

// mostCommonRanges returns the top-n range labels by descending
// frequency. The stable sort keeps original row order as the tie-break.
func mostCommonRanges(rows []bin.Record, n int) []string {
	sorted := make([]bin.Record, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Frequency > sorted[j].Frequency
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	labels := make([]string, 0, len(sorted))
	for _, r := range sorted {
		labels = append(labels, r.Range.Label())
	}
	return labels
}
