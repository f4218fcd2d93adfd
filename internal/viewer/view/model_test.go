package view

import (
	"testing"
	"time"
)

func TestBoundsPad(t *testing.T) {
	b := Bounds{MinLat: 10, MinLng: 70, MaxLat: 12, MaxLng: 78}
	got := b.Pad(0.3)

	want := Bounds{MinLat: 10 - 0.6, MinLng: 70 - 2.4, MaxLat: 12 + 0.6, MaxLng: 78 + 2.4}
	if got != want {
		t.Errorf("Pad = %+v, want %+v", got, want)
	}
}

func TestBoundsPadDegenerate(t *testing.T) {
	b := Bounds{MinLat: 12.97, MinLng: 77.59, MaxLat: 12.97, MaxLng: 77.59}
	if got := b.Pad(0.3); got != b {
		t.Errorf("point bounds changed by padding: %+v", got)
	}
}

func TestFormatPosition(t *testing.T) {
	cases := []struct {
		lat, lng float64
		want     string
	}{
		{12.9716, 77.5946, "12.97160, 77.59460"},
		{0, 0, "0.00000, 0.00000"},
		{-33.856789, 151.215296, "-33.85679, 151.21530"},
	}
	for _, tc := range cases {
		if got := formatPosition(tc.lat, tc.lng); got != tc.want {
			t.Errorf("formatPosition(%v, %v) = %q, want %q", tc.lat, tc.lng, got, tc.want)
		}
	}
}

func TestFormatLastUpdate(t *testing.T) {
	if got := formatLastUpdate(0); got != "-" {
		t.Errorf("zero lastUpdate = %q, want -", got)
	}

	millis := time.Date(2026, 9, 1, 14, 5, 9, 0, time.Local).UnixMilli()
	if got := formatLastUpdate(millis); got != "14:05:09" {
		t.Errorf("formatLastUpdate = %q, want 14:05:09", got)
	}
}

func TestCardSummary(t *testing.T) {
	c := BusCard{BusID: "BUS001", Driver: "Raj", Route: "101", Status: "online"}
	if got := c.Summary(); got != "BUS001 / Raj / Route: 101 / online" {
		t.Errorf("summary = %q", got)
	}
}
