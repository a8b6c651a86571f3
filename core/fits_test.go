package core

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fitsCard(key, value string) []byte {
	return []byte(fmt.Sprintf("%-8s= %-70s", key, value))
}

func fitsBlock(cards [][]byte) []byte {
	var buf bytes.Buffer
	for _, c := range cards {
		buf.Write(c)
	}
	buf.Write([]byte(fmt.Sprintf("%-80s", "END")))
	for buf.Len()%fitsBlockSize != 0 {
		buf.WriteByte(' ')
	}
	return buf.Bytes()
}

// buildSkyMapFITS synthesizes a header-only primary HDU plus one
// BINTABLE extension with a float64 probability column preceded by a
// float32 padding column.
func buildSkyMapFITS(pixels []float64, ordering string, nsideCard int) []byte {
	var buf bytes.Buffer
	buf.Write(fitsBlock([][]byte{
		fitsCard("SIMPLE", "T"),
		fitsCard("BITPIX", "8"),
		fitsCard("NAXIS", "0"),
	}))

	rowBytes := 4 + 8
	cards := [][]byte{
		fitsCard("XTENSION", "'BINTABLE'"),
		fitsCard("BITPIX", "8"),
		fitsCard("NAXIS", "2"),
		fitsCard("NAXIS1", fmt.Sprint(rowBytes)),
		fitsCard("NAXIS2", fmt.Sprint(len(pixels))),
		fitsCard("PCOUNT", "0"),
		fitsCard("GCOUNT", "1"),
		fitsCard("TFIELDS", "2"),
		fitsCard("TTYPE1", "'INDEX'"),
		fitsCard("TFORM1", "'E'"),
		fitsCard("TTYPE2", "'PROB'"),
		fitsCard("TFORM2", "'D'"),
	}
	if ordering != "" {
		cards = append(cards, fitsCard("ORDERING", fmt.Sprintf("'%s'", ordering)))
	}
	if nsideCard > 0 {
		cards = append(cards, fitsCard("NSIDE", fmt.Sprint(nsideCard)))
	}
	buf.Write(fitsBlock(cards))

	start := buf.Len()
	for i, p := range pixels {
		var cell [12]byte
		binary.BigEndian.PutUint32(cell[:4], math.Float32bits(float32(i)))
		binary.BigEndian.PutUint64(cell[4:], math.Float64bits(p))
		buf.Write(cell[:])
	}
	for (buf.Len()-start)%fitsBlockSize != 0 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func writeTempMap(t *testing.T, name string, data []byte, gz bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if gz {
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			t.Fatalf("gzip write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("gzip close: %v", err)
		}
		data = buf.Bytes()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func uniformPixels(nside int) []float64 {
	npix := 12 * nside * nside
	pixels := make([]float64, npix)
	for i := range pixels {
		pixels[i] = 1 / float64(npix)
	}
	return pixels
}

func TestReadSkyMap(t *testing.T) {
	data := buildSkyMapFITS(uniformPixels(2), "RING", 2)
	path := writeTempMap(t, "skymap.fits", data, false)

	m, err := ReadSkyMap(path)
	if err != nil {
		t.Fatalf("ReadSkyMap error: %v", err)
	}
	if m.Nside != 2 {
		t.Fatalf("Nside = %d, want 2", m.Nside)
	}
	if m.Npix() != 48 {
		t.Fatalf("Npix = %d, want 48", m.Npix())
	}
	if math.Abs(m.Pixels[17]-1.0/48) > 1e-15 {
		t.Fatalf("pixel 17 = %v, want uniform", m.Pixels[17])
	}
	if math.Abs(m.PixelAreaDeg2-PixelAreaDeg2(2)) > 1e-12 {
		t.Fatalf("PixelAreaDeg2 = %v, want %v", m.PixelAreaDeg2, PixelAreaDeg2(2))
	}
}

func TestReadSkyMapGzip(t *testing.T) {
	data := buildSkyMapFITS(uniformPixels(1), "RING", 1)
	path := writeTempMap(t, "skymap.fits.gz", data, true)

	m, err := ReadSkyMap(path)
	if err != nil {
		t.Fatalf("ReadSkyMap error: %v", err)
	}
	if m.Nside != 1 {
		t.Fatalf("Nside = %d, want 1", m.Nside)
	}
}

func TestReadSkyMapRejectsNested(t *testing.T) {
	data := buildSkyMapFITS(uniformPixels(1), "NESTED", 1)
	path := writeTempMap(t, "skymap.fits", data, false)

	if _, err := ReadSkyMap(path); err == nil || !strings.Contains(err.Error(), "ordering") {
		t.Fatalf("ReadSkyMap error = %v, want ordering rejection", err)
	}
}

func TestReadSkyMapRejectsBadSum(t *testing.T) {
	pixels := uniformPixels(1)
	pixels[0] += 0.5
	data := buildSkyMapFITS(pixels, "RING", 1)
	path := writeTempMap(t, "skymap.fits", data, false)

	if _, err := ReadSkyMap(path); err == nil || !strings.Contains(err.Error(), "sum") {
		t.Fatalf("ReadSkyMap error = %v, want probability-sum rejection", err)
	}
}

func TestReadSkyMapRejectsNsideMismatch(t *testing.T) {
	data := buildSkyMapFITS(uniformPixels(1), "RING", 4)
	path := writeTempMap(t, "skymap.fits", data, false)

	if _, err := ReadSkyMap(path); err == nil || !strings.Contains(err.Error(), "NSIDE") {
		t.Fatalf("ReadSkyMap error = %v, want NSIDE mismatch", err)
	}
}

func TestReadSkyMapMissingFile(t *testing.T) {
	if _, err := ReadSkyMap(filepath.Join(t.TempDir(), "absent.fits")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
