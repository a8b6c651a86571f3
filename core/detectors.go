package core

import "github.com/signalsfoundry/skymap-correlator/model"

// BuiltinDetectors returns the site table for the interferometers the
// tool knows out of the box. Arm azimuths are degrees clockwise from
// local North, from the published site documents. A JSON scenario file
// can extend or override these through the registry.
func BuiltinDetectors() []model.DetectorSite {
	return []model.DetectorSite{
		{
			Code: "H1", Name: "LIGO Hanford",
			LatitudeDeg: 46.4552, LongitudeDeg: -119.4076,
			XArmAzimuthDeg: 324.0006, YArmAzimuthDeg: 234.0006,
		},
		{
			Code: "L1", Name: "LIGO Livingston",
			LatitudeDeg: 30.5629, LongitudeDeg: -90.7742,
			XArmAzimuthDeg: 252.2835, YArmAzimuthDeg: 162.2835,
		},
		{
			Code: "V1", Name: "Virgo",
			LatitudeDeg: 43.6314, LongitudeDeg: 10.5045,
			XArmAzimuthDeg: 19.4326, YArmAzimuthDeg: 289.4326,
		},
		{
			Code: "K1", Name: "KAGRA",
			LatitudeDeg: 36.4113, LongitudeDeg: 137.3061,
			XArmAzimuthDeg: 60.3957, YArmAzimuthDeg: 330.3957,
		},
	}
}
