package model

// DetectorSite describes one interferometer: geodetic location plus the
// azimuths of its two arms. Azimuths are degrees clockwise from local
// North, matching the convention of the published site documents.
type DetectorSite struct {
	Code string // e.g. "H1"
	Name string

	LatitudeDeg  float64
	LongitudeDeg float64

	XArmAzimuthDeg float64
	YArmAzimuthDeg float64
}

// NetworkConfiguration is a named, ordered set of detector codes. All
// events processed under it are aggregated beneath its label. Immutable
// for the duration of a run.
type NetworkConfiguration struct {
	Label     string
	Detectors []string
}
