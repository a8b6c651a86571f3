package gwtime

import (
	"math"
	"testing"
	"time"
)

func TestSiderealHours(t *testing.T) {
	cases := []struct {
		gps  float64
		want float64
	}{
		{0, 0},
		{3600, 1},
		{86400, 0},
		{90000, 1},
		{1126259462.4, math.Mod(1126259462.4/3600, 24)},
	}
	for _, c := range cases {
		if got := SiderealHours(c.gps); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("SiderealHours(%v) = %v, want %v", c.gps, got, c.want)
		}
	}
}

func TestSiderealHoursNegative(t *testing.T) {
	got := SiderealHours(-3600)
	if math.Abs(got-23) > 1e-9 {
		t.Fatalf("SiderealHours(-3600) = %v, want 23", got)
	}
}

func TestMidnightEpoch(t *testing.T) {
	gps := 1126259462.4
	epoch := MidnightEpoch(gps)
	if math.Mod(epoch, 86400) != 0 {
		t.Fatalf("epoch %v is not a midnight boundary", epoch)
	}
	if epoch > gps || gps-epoch >= 86400 {
		t.Fatalf("epoch %v not within the day of %v", epoch, gps)
	}
}

func TestGPSToUTC(t *testing.T) {
	// GPS zero is the 1980-01-06 epoch shifted by the leap-second count.
	got := GPSToUTC(0)
	want := time.Date(1980, time.January, 5, 23, 59, 42, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("GPSToUTC(0) = %v, want %v", got, want)
	}

	got = GPSToUTC(1126259462)
	if got.Year() != 2015 || got.Month() != time.September {
		t.Fatalf("GPSToUTC(1126259462) = %v, want September 2015", got)
	}
}

func TestGMSTHoursRange(t *testing.T) {
	for _, at := range []time.Time{
		time.Date(2015, time.September, 14, 9, 50, 45, 0, time.UTC),
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC),
	} {
		h := GMSTHours(at)
		if h < 0 || h >= 24 {
			t.Fatalf("GMSTHours(%v) = %v outside [0,24)", at, h)
		}
	}
}

func TestGMSTSiderealPeriod(t *testing.T) {
	// One sidereal day later GMST repeats to within a fraction of a second.
	at := time.Date(2015, time.September, 14, 9, 50, 45, 0, time.UTC)
	const siderealDay = 86164.0905
	later := at.Add(time.Duration(siderealDay * float64(time.Second)))

	a, b := GMSTHours(at), GMSTHours(later)
	diff := math.Abs(a - b)
	if diff > 12 {
		diff = 24 - diff
	}
	if diff > 1e-3 {
		t.Fatalf("GMST drifted %v hours over one sidereal day", diff)
	}
}

func TestGMSTAdvancesFasterThanSolar(t *testing.T) {
	// Over 24 solar hours GMST gains roughly 3m56s.
	at := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
	a, b := GMSTHours(at), GMSTHours(at.Add(24*time.Hour))
	gain := math.Mod(b-a+24, 24)
	if gain < 0.060 || gain > 0.071 {
		t.Fatalf("GMST gained %v hours over a solar day, want ~0.0657", gain)
	}
}

func TestHoursToRadians(t *testing.T) {
	if got := HoursToRadians(12); math.Abs(got-math.Pi) > 1e-12 {
		t.Fatalf("HoursToRadians(12) = %v, want pi", got)
	}
	if got := HoursToRadians(6); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Fatalf("HoursToRadians(6) = %v, want pi/2", got)
	}
}
