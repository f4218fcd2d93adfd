package domain

import "testing"

func TestHasFix(t *testing.T) {
	cases := []struct {
		name string
		rec  BusRecord
		want bool
	}{
		{"both set", BusRecord{Lat: Float64Ptr(12.97), Lng: Float64Ptr(77.59)}, true},
		{"zero coordinates still a fix", BusRecord{Lat: Float64Ptr(0), Lng: Float64Ptr(0)}, true},
		{"lat only", BusRecord{Lat: Float64Ptr(12.97)}, false},
		{"lng only", BusRecord{Lng: Float64Ptr(77.59)}, false},
		{"neither", BusRecord{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.HasFix(); got != tc.want {
				t.Errorf("HasFix = %v, want %v", got, tc.want)
			}
		})
	}
}
