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

func TestUTCDate(t *testing.T) {
	ts := time.Date(2024, 10, 10, 23, 59, 59, 0, time.UTC).Unix()
	if got := UTCDate(ts); got != "2024-10-10" {
		t.Fatalf("unexpected date %q", got)
	}
	// A bar just after midnight UTC belongs to the next date.
	if got := UTCDate(ts + 1); got != "2024-10-11" {
		t.Fatalf("unexpected date %q", got)
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(0, 1, 30); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := ClampInt(100, 1, 30); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
	if got := ClampInt(7, 1, 30); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestClampFloat(t *testing.T) {
	if got := ClampFloat(1.2, 0.05, 0.95); got != 0.95 {
		t.Fatalf("expected 0.95, got %v", got)
	}
	if got := ClampFloat(-0.3, 0.05, 0.95); got != 0.05 {
		t.Fatalf("expected 0.05, got %v", got)
	}
}
