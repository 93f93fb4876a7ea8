package session

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnsupportedFormat is returned for source files that are not CSV.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected a CSV file")

// Load reads the session table from a CSV file. The application column
// name is configurable because upstream exports are not consistent about
// it; all other column names are fixed.
//
// A missing file and a non-CSV file are distinct, fatal errors. A CSV
// with a header but no data rows loads as an empty table.
func Load(path, applicationColumn string) ([]Record, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("the file %q was not found: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	if !strings.HasSuffix(strings.ToLower(path), ".csv") {
		return nil, fmt.Errorf("%q: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read csv %q: missing header row", path)
	}

	cols, err := columnIndex(rows[0], applicationColumn)
	if err != nil {
		return nil, fmt.Errorf("read csv %q: %w", path, err)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, Record{
			DeviceID:    row[cols.deviceID],
			ContentID:   row[cols.contentID],
			Title:       row[cols.title],
			SeasonID:    row[cols.seasonID],
			StartTime:   row[cols.startTime],
			EndTime:     row[cols.endTime],
			Duration:    row[cols.duration],
			Application: row[cols.application],
		})
	}
	return records, nil
}

type columns struct {
	deviceID    int
	contentID   int
	title       int
	seasonID    int
	startTime   int
	endTime     int
	duration    int
	application int
}

func columnIndex(header []string, applicationColumn string) (columns, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		byName[strings.TrimSpace(name)] = i
	}

	cols := columns{}
	for _, want := range []struct {
		name string
		dst  *int
	}{
		{"tv_id", &cols.deviceID},
		{"content_id", &cols.contentID},
		{"title", &cols.title},
		{"season_id", &cols.seasonID},
		{"start_time", &cols.startTime},
		{"end_time", &cols.endTime},
		{"duration", &cols.duration},
		{applicationColumn, &cols.application},
	} {
		idx, ok := byName[want.name]
		if !ok {
			return columns{}, fmt.Errorf("missing required column %q", want.name)
		}
		*want.dst = idx
	}
	return cols, nil
}
