package gap

import (
	"math"
	"testing"

	"github.com/skyline-analytics/adgap/internal/session"
)

func sess(device, content, start, end string) session.Record {
	return session.Record{DeviceID: device, ContentID: content, StartTime: start, EndTime: end}
}

func TestCompute_SingleGroup(t *testing.T) {
	// 5 minute session, 30s pause, second session.
	sessions := []session.Record{
		sess("tv1", "c1", "10:00:00", "10:05:00"),
		sess("tv1", "c1", "10:05:30", "10:10:00"),
	}

	got, err := Compute(sessions)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Seconds != nil {
		t.Errorf("first session of a group should have nil gap, got %v", *got[0].Seconds)
	}
	if got[1].Seconds == nil {
		t.Fatal("second session should have a gap")
	}
	if math.Abs(*got[1].Seconds-30) > 0.001 {
		t.Errorf("expected 30s gap, got %f", *got[1].Seconds)
	}
}

func TestCompute_SortsChronologically(t *testing.T) {
	// Out-of-order input must be sorted by start_time before differencing.
	sessions := []session.Record{
		sess("tv1", "c1", "10:05:30", "10:10:00"),
		sess("tv1", "c1", "10:00:00", "10:05:00"),
	}

	got, err := Compute(sessions)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got[0].Session.StartTime != "10:00:00" {
		t.Errorf("expected earliest session first, got %s", got[0].Session.StartTime)
	}
	if got[1].Seconds == nil || math.Abs(*got[1].Seconds-30) > 0.001 {
		t.Errorf("expected 30s gap after sorting, got %v", got[1].Seconds)
	}
}

func TestCompute_SingletonGroupSkipped(t *testing.T) {
	// tv1 has two sessions overall but only one per content item.
	sessions := []session.Record{
		sess("tv1", "c1", "10:00:00", "10:05:00"),
		sess("tv1", "c2", "11:00:00", "11:05:00"),
	}

	got, err := Compute(sessions)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("singleton groups should contribute no records, got %d", len(got))
	}
}

func TestCompute_GroupsByDeviceAndContent(t *testing.T) {
	sessions := []session.Record{
		sess("tv1", "c1", "10:00:00", "10:05:00"),
		sess("tv2", "c1", "10:00:00", "10:05:00"),
		sess("tv1", "c1", "10:06:00", "10:10:00"),
		sess("tv2", "c1", "10:07:00", "10:10:00"),
	}

	got, err := Compute(sessions)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 records, got %d", len(got))
	}
	// Groups emitted in first-encountered order: tv1 then tv2.
	if got[0].Session.DeviceID != "tv1" || got[2].Session.DeviceID != "tv2" {
		t.Errorf("expected tv1 group before tv2 group, got %s then %s",
			got[0].Session.DeviceID, got[2].Session.DeviceID)
	}
	if got[1].Seconds == nil || math.Abs(*got[1].Seconds-60) > 0.001 {
		t.Errorf("expected 60s gap for tv1, got %v", got[1].Seconds)
	}
	if got[3].Seconds == nil || math.Abs(*got[3].Seconds-120) > 0.001 {
		t.Errorf("expected 120s gap for tv2, got %v", got[3].Seconds)
	}
}

func TestCompute_NegativeGapPreserved(t *testing.T) {
	// Overlapping sessions: second starts before the first ends.
	sessions := []session.Record{
		sess("tv1", "c1", "10:00:00", "10:05:00"),
		sess("tv1", "c1", "10:04:30", "10:09:00"),
	}

	got, err := Compute(sessions)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got[1].Seconds == nil || math.Abs(*got[1].Seconds-(-30)) > 0.001 {
		t.Errorf("expected -30s gap preserved, got %v", got[1].Seconds)
	}
}

func TestCompute_TimestampWhitespaceTrimmed(t *testing.T) {
	sessions := []session.Record{
		sess("tv1", "c1", "  2024-03-01 10:00:00 ", "2024-03-01 10:05:00"),
		sess("tv1", "c1", "2024-03-01T10:06:00Z", " 2024-03-01T10:10:00Z"),
	}

	got, err := Compute(sessions)
	if err != nil {
		t.Fatalf("Compute should trim whitespace and accept mixed layouts: %v", err)
	}
	if got[1].Seconds == nil || math.Abs(*got[1].Seconds-60) > 0.001 {
		t.Errorf("expected 60s gap, got %v", got[1].Seconds)
	}
}

func TestCompute_MalformedTimestampFatal(t *testing.T) {
	sessions := []session.Record{
		sess("tv1", "c1", "10:00:00", "10:05:00"),
		sess("tv1", "c1", "not-a-time", "10:10:00"),
	}

	if _, err := Compute(sessions); err == nil {
		t.Fatal("expected fatal error for malformed timestamp")
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	got, err := Compute(nil)
	if err != nil {
		t.Fatalf("empty input should not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
