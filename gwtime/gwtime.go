// Package gwtime converts between GPS timestamps, UTC, and sidereal time.
package gwtime

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// gpsEpoch is 1980-01-06T00:00:00 UTC, the zero of the GPS time scale.
var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// leapSeconds is the GPS−UTC offset. Constant since 2017; good enough for
// the injection epochs this tool analyzes.
const leapSeconds = 18

const secondsPerDay = 86400.0

// SiderealHours reduces a geocentric GPS end time to the sidereal-hour
// offset used to rotate an Earth-fixed sky map into the frame of the
// observation instant: (gps / 3600) mod 24.
func SiderealHours(gpsSeconds float64) float64 {
	h := math.Mod(gpsSeconds/3600, 24)
	if h < 0 {
		h += 24
	}
	return h
}

// MidnightEpoch truncates a GPS time to the previous midnight boundary,
// the fixed epoch used for the background antenna-pattern grid.
func MidnightEpoch(gpsSeconds float64) float64 {
	return gpsSeconds - math.Mod(gpsSeconds, secondsPerDay)
}

// GPSToUTC converts GPS seconds to UTC.
func GPSToUTC(gpsSeconds float64) time.Time {
	sec, frac := math.Modf(gpsSeconds)
	d := time.Duration(sec)*time.Second + time.Duration(frac*float64(time.Second))
	return gpsEpoch.Add(d - leapSeconds*time.Second)
}

// GMSTHours returns the Greenwich mean sidereal time for a UTC instant,
// in hours over [0, 24).
func GMSTHours(t time.Time) float64 {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmstRad := satellite.ThetaG_JD(jd)

	h := math.Mod(gmstRad*12/math.Pi, 24)
	if h < 0 {
		h += 24
	}
	return h
}

// GMSTHoursGPS is GMSTHours over a GPS timestamp.
func GMSTHoursGPS(gpsSeconds float64) float64 {
	return GMSTHours(GPSToUTC(gpsSeconds))
}

// HoursToRadians converts sidereal hours to radians (15° per hour).
func HoursToRadians(hours float64) float64 {
	return hours * math.Pi / 12
}
