// Package plotting renders the per-event sky overlays and the per-label
// summary figures.
package plotting

import (
	"fmt"
	"image/color"
	"strings"
)

// Quantity selects which antenna-network field a layer draws.
type Quantity string

const (
	QuantityNetwork   Quantity = "network"
	QuantityAlignment Quantity = "alignment"
	QuantityDPF       Quantity = "dpf"
)

// ParseQuantity validates a quantity flag value.
func ParseQuantity(s string) (Quantity, error) {
	switch Quantity(strings.ToLower(strings.TrimSpace(s))) {
	case QuantityNetwork:
		return QuantityNetwork, nil
	case QuantityAlignment:
		return QuantityAlignment, nil
	case QuantityDPF:
		return QuantityDPF, nil
	}
	return "", fmt.Errorf("unknown antenna quantity %q (want network, alignment or dpf)", s)
}

// ColorSpec controls how one label's summary scatter is colored: either
// a single flat color, or a per-point gradient driven by a record
// quantity ("snr" or "error_region") through a named colormap.
type ColorSpec struct {
	Flat     color.Color
	Quantity string
	Colormap string
}

// Gradient reports whether the spec colors points by a record quantity.
func (c ColorSpec) Gradient() bool { return c.Quantity != "" }

// scaleFor returns the fixed normalization window of a scatter quantity.
// The windows are fixed rather than data-driven so figures from separate
// runs stay comparable.
func scaleFor(quantity string) (vmin, vmax float64, err error) {
	switch quantity {
	case "snr":
		return 10, 20, nil
	case "error_region":
		return 0, 64, nil
	}
	return 0, 0, fmt.Errorf("unknown scatter quantity %q (want snr or error_region)", quantity)
}

var namedColors = map[string]color.Color{
	"black":   color.RGBA{A: 255},
	"red":     color.RGBA{R: 200, A: 255},
	"green":   color.RGBA{G: 140, A: 255},
	"blue":    color.RGBA{B: 200, A: 255},
	"orange":  color.RGBA{R: 230, G: 140, A: 255},
	"purple":  color.RGBA{R: 128, B: 128, A: 255},
	"gray":    color.RGBA{R: 128, G: 128, B: 128, A: 255},
	"magenta": color.RGBA{R: 200, B: 200, A: 255},
}

// ParseColorSpec parses one repeatable colorspec flag value of the form
// "label=colorname" or "label=quantity,colormap".
func ParseColorSpec(s string) (label string, spec ColorSpec, err error) {
	label, value, ok := strings.Cut(s, "=")
	if !ok || label == "" || value == "" {
		return "", ColorSpec{}, fmt.Errorf("bad colorspec %q (want label=color or label=quantity,colormap)", s)
	}
	if quantity, cmap, ok := strings.Cut(value, ","); ok {
		if _, _, err := scaleFor(quantity); err != nil {
			return "", ColorSpec{}, fmt.Errorf("colorspec %q: %w", s, err)
		}
		if _, ok := colormaps[cmap]; !ok {
			return "", ColorSpec{}, fmt.Errorf("colorspec %q: unknown colormap %q", s, cmap)
		}
		return label, ColorSpec{Quantity: quantity, Colormap: cmap}, nil
	}
	c, ok := namedColors[strings.ToLower(value)]
	if !ok {
		return "", ColorSpec{}, fmt.Errorf("colorspec %q: unknown color %q", s, value)
	}
	return label, ColorSpec{Flat: c}, nil
}

// colormaps are small piecewise-linear gradients; t runs over [0, 1].
var colormaps = map[string][]color.NRGBA{
	"viridis": {
		{R: 68, G: 1, B: 84, A: 255},
		{R: 59, G: 82, B: 139, A: 255},
		{R: 33, G: 145, B: 140, A: 255},
		{R: 94, G: 201, B: 98, A: 255},
		{R: 253, G: 231, B: 37, A: 255},
	},
	"plasma": {
		{R: 13, G: 8, B: 135, A: 255},
		{R: 126, G: 3, B: 168, A: 255},
		{R: 204, G: 71, B: 120, A: 255},
		{R: 248, G: 149, B: 64, A: 255},
		{R: 240, G: 249, B: 33, A: 255},
	},
	"coolwarm": {
		{R: 59, G: 76, B: 192, A: 255},
		{R: 221, G: 221, B: 221, A: 255},
		{R: 180, G: 4, B: 38, A: 255},
	},
	"gray": {
		{R: 20, G: 20, B: 20, A: 255},
		{R: 235, G: 235, B: 235, A: 255},
	},
}

// colormapAt linearly interpolates a named colormap at t in [0, 1];
// out-of-range t clamps to the endpoints.
func colormapAt(name string, t float64) color.Color {
	stops, ok := colormaps[name]
	if !ok {
		stops = colormaps["viridis"]
	}
	if t <= 0 {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := stops[i], stops[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + frac*(float64(y)-float64(x)))
	}
	return color.NRGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: 255,
	}
}
