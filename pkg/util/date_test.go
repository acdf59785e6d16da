package util

import (
	"testing"
	"time"
)

func TestEpochMillis(t *testing.T) {
	sec := int64(1700000000)
	if got := EpochMillis(sec); got != sec*1000 {
		t.Fatalf("seconds not converted: %d", got)
	}
	ms := sec * 1000
	if got := EpochMillis(ms); got != ms {
		t.Fatalf("millis changed: %d", got)
	}
}

func TestUnixDate(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC).Unix()
	if got := UnixDate(ts); got != "2024-03-05" {
		t.Fatalf("unexpected date %q", got)
	}
}

func TestParseFloat(t *testing.T) {
	if v, ok := ParseFloat(" 187.4400 "); !ok || v != 187.44 {
		t.Fatalf("unexpected %v %v", v, ok)
	}
	if _, ok := ParseFloat("n/a"); ok {
		t.Fatalf("expected failure")
	}
	if v, ok := ParsePercent("-1.5%"); !ok || v != -1.5 {
		t.Fatalf("unexpected percent %v", v)
	}
	if got := NormalizeTicker(" aapl "); got != "AAPL" {
		t.Fatalf("unexpected ticker %q", got)
	}
}
