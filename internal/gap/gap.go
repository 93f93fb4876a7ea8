// Package gap computes the elapsed time between consecutive viewing
// sessions of the same device/title pair.
package gap

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/skyline-analytics/adgap/internal/session"
)

// Record is a session enriched with the gap to its predecessor in the
// same device/content group. Seconds is nil for the first session of a
// group, which has no predecessor. Negative values mean overlapping
// sessions and are carried through as computed.
type Record struct {
	Session session.Record
	Seconds *float64
}

// timeLayouts are tried in order when parsing session timestamps.
// Upstream exports carry either full timestamps or bare clock times.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"15:04:05",
}

type groupKey struct {
	deviceID  string
	contentID string
}

// Compute partitions sessions by device+content, sorts each group
// chronologically and derives per-session gaps. Groups with a single
// session contribute nothing. A malformed timestamp anywhere in the
// retained set aborts the computation.
func Compute(sessions []session.Record) ([]Record, error) {
	groups := make(map[groupKey][]timedSession)
	var order []groupKey

	for _, s := range sessions {
		start, err := parseTime(s.StartTime)
		if err != nil {
			return nil, fmt.Errorf("device %s: bad start_time: %w", s.DeviceID, err)
		}
		end, err := parseTime(s.EndTime)
		if err != nil {
			return nil, fmt.Errorf("device %s: bad end_time: %w", s.DeviceID, err)
		}

		key := groupKey{deviceID: s.DeviceID, contentID: s.ContentID}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], timedSession{record: s, start: start, end: end})
	}

	var out []Record
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			return group[i].start.Before(group[j].start)
		})

		for i, ts := range group {
			r := Record{Session: ts.record}
			if i > 0 {
				secs := ts.start.Sub(group[i-1].end).Seconds()
				r.Seconds = &secs
			}
			out = append(out, r)
		}
	}
	return out, nil
}

type timedSession struct {
	record session.Record
	start  time.Time
	end    time.Time
}

func parseTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", raw)
}
