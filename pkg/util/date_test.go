package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2024 || got.Month() != time.October || got.Day() != 10 {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestStartOfWeek(t *testing.T) {
	// Wednesday
	wed := time.Date(2024, 10, 9, 15, 0, 0, 0, time.UTC)
	got := StartOfWeek(wed)
	if got.Weekday() != time.Monday {
		t.Fatalf("want Monday, got %v", got.Weekday())
	}
	if got.Day() != 7 {
		t.Fatalf("want Oct 7, got %v", got)
	}
	// Sunday folds into the preceding Monday
	sun := time.Date(2024, 10, 13, 0, 0, 0, 0, time.UTC)
	if StartOfWeek(sun).Day() != 7 {
		t.Fatalf("sunday should map to Oct 7, got %v", StartOfWeek(sun))
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2024, 10, 9, 13, 30, 0, 0, time.UTC)
	to := time.Date(2024, 10, 11, 9, 0, 0, 0, time.UTC)
	f, tt := AlignFromTo(from, to, "1d")
	if f.Hour() != 0 || tt.Hour() != 0 {
		t.Fatalf("daily alignment should truncate to midnight: %v %v", f, tt)
	}
	f, _ = AlignFromTo(from, to, "1w")
	if f.Weekday() != time.Monday {
		t.Fatalf("weekly alignment should snap to Monday, got %v", f.Weekday())
	}
}
