// Package session holds the viewing-session model and the stages that
// narrow the raw table down to analyzable devices.
package session

// Record is one observed viewing session, immutable once loaded.
// Timestamps stay as raw strings here; the gap calculator parses them.
type Record struct {
	DeviceID    string // tv_id column
	ContentID   string
	Title       string
	SeasonID    string
	StartTime   string
	EndTime     string
	Duration    string
	Application string // provider name
}

// FilterByProvider keeps only sessions whose application matches the
// provider exactly, preserving input order. An empty result is valid.
func FilterByProvider(records []Record, provider string) []Record {
	var out []Record
	for _, r := range records {
		if r.Application == provider {
			out = append(out, r)
		}
	}
	return out
}

// FilterMultiSession drops every device that has only a single session;
// a gap needs at least two. Input order is preserved for survivors.
func FilterMultiSession(records []Record) []Record {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.DeviceID]++
	}

	var out []Record
	for _, r := range records {
		if counts[r.DeviceID] > 1 {
			out = append(out, r)
		}
	}
	return out
}
