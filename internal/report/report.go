// Package report persists a provider run's tables as CSV files,
// mirroring the four per-provider exports the analysis has always
// produced: raw filtered data, gap analysis, gap frequencies and
// subscription types.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/skyline-analytics/adgap/internal/pipeline"
)

type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteAll exports every table of a provider run. Files are named
// <provider>_data.csv, <provider>_gap_analysis.csv,
// <provider>_frequency_analysis.csv and <provider>_subscription_types.csv.
func (w *Writer) WriteAll(res *pipeline.Result) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := w.writeSessions(res); err != nil {
		return err
	}
	if err := w.writeGapAnalysis(res); err != nil {
		return err
	}
	if err := w.writeFrequencies(res); err != nil {
		return err
	}
	return w.writeVerdicts(res)
}

func (w *Writer) writeSessions(res *pipeline.Result) error {
	rows := [][]string{{"application", "tv_id", "content_id", "start_time", "end_time", "duration", "title", "season_id"}}
	for _, s := range res.Sessions {
		rows = append(rows, []string{
			s.Application, s.DeviceID, s.ContentID,
			s.StartTime, s.EndTime, s.Duration, s.Title, s.SeasonID,
		})
	}
	return w.writeFile(res.Provider+"_data.csv", rows)
}

func (w *Writer) writeGapAnalysis(res *pipeline.Result) error {
	rows := [][]string{{"tv_id", "content_id", "start_time", "end_time", "gap_seconds"}}
	for _, g := range res.Gaps {
		secs := "" // null gap: first session of its group
		if g.Seconds != nil {
			secs = strconv.FormatFloat(*g.Seconds, 'f', -1, 64)
		}
		rows = append(rows, []string{
			g.Session.DeviceID, g.Session.ContentID,
			g.Session.StartTime, g.Session.EndTime, secs,
		})
	}
	return w.writeFile(res.Provider+"_gap_analysis.csv", rows)
}

func (w *Writer) writeFrequencies(res *pipeline.Result) error {
	rows := [][]string{{"tv_id", "gap_range", "frequency"}}
	for _, f := range res.Frequencies {
		rows = append(rows, []string{f.DeviceID, f.Range.Label(), strconv.Itoa(f.Frequency)})
	}
	return w.writeFile(res.Provider+"_frequency_analysis.csv", rows)
}

func (w *Writer) writeVerdicts(res *pipeline.Result) error {
	rows := [][]string{{"tv_id", "subscription_type", "total_gaps", "ad_like_gaps", "long_gaps", "ad_gap_proportion", "most_common_ranges"}}
	for _, v := range res.Verdicts {
		rows = append(rows, []string{
			v.DeviceID, v.SubscriptionType,
			strconv.Itoa(v.TotalGaps), strconv.Itoa(v.AdLikeGaps), strconv.Itoa(v.LongGaps),
			strconv.FormatFloat(v.AdGapProportion, 'f', 3, 64),
			v.MostCommonDisplay(),
		})
	}
	return w.writeFile(res.Provider+"_subscription_types.csv", rows)
}

func (w *Writer) writeFile(name string, rows [][]string) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
