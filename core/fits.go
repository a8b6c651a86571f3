package core

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/signalsfoundry/skymap-correlator/model"
)

// Minimal FITS reader for HEALPix sky maps: a header-only primary HDU
// followed by one BINTABLE extension carrying the per-pixel probability
// column. Transparent gzip for .fits.gz files.

const fitsBlockSize = 2880
const fitsRecordSize = 80

// probSumTolerance bounds how far the pixel probabilities may drift from
// unity before the map is rejected.
const probSumTolerance = 1e-3

type fitsHeader struct {
	cards map[string]string
}

func (h *fitsHeader) str(key string) string {
	return h.cards[strings.ToUpper(key)]
}

func (h *fitsHeader) int(key string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(h.cards[strings.ToUpper(key)]))
	if err != nil {
		return 0, false
	}
	return v, true
}

// readFITSHeader consumes whole 2880-byte blocks of 80-char records until
// the END card.
func readFITSHeader(r io.Reader) (*fitsHeader, error) {
	hdr := &fitsHeader{cards: make(map[string]string)}
	record := make([]byte, fitsRecordSize)
	for {
		done := false
		for i := 0; i < fitsBlockSize/fitsRecordSize; i++ {
			if _, err := io.ReadFull(r, record); err != nil {
				return nil, fmt.Errorf("reading header record: %w", err)
			}
			if done {
				continue // drain the rest of the block
			}
			card := string(record)
			keyword := strings.TrimSpace(card[:8])
			if keyword == "END" {
				done = true
				continue
			}
			if len(card) > 10 && card[8] == '=' && card[9] == ' ' {
				raw := strings.TrimSpace(strings.SplitN(card[10:], "/", 2)[0])
				hdr.cards[strings.ToUpper(keyword)] = parseFITSValue(raw)
			}
		}
		if done {
			return hdr, nil
		}
	}
}

func parseFITSValue(raw string) string {
	if strings.HasPrefix(raw, "'") {
		if end := strings.LastIndex(raw, "'"); end > 0 {
			return strings.TrimRight(raw[1:end], " ")
		}
		return strings.Trim(raw, "' ")
	}
	return raw
}

// tformWidth returns (repeat count, bytes per element) for a binary-table
// TFORM code such as "1024E" or "D".
func tformWidth(tform string) (int, int, error) {
	tform = strings.TrimSpace(tform)
	i := 0
	for i < len(tform) && tform[i] >= '0' && tform[i] <= '9' {
		i++
	}
	repeat := 1
	if i > 0 {
		var err error
		repeat, err = strconv.Atoi(tform[:i])
		if err != nil {
			return 0, 0, fmt.Errorf("bad TFORM repeat in %q", tform)
		}
	}
	if i >= len(tform) {
		return 0, 0, fmt.Errorf("bad TFORM %q", tform)
	}
	var size int
	switch tform[i] {
	case 'B', 'A', 'L':
		size = 1
	case 'I':
		size = 2
	case 'E', 'J':
		size = 4
	case 'D', 'K':
		size = 8
	default:
		return 0, 0, fmt.Errorf("unsupported TFORM type %q", tform)
	}
	return repeat, size, nil
}

// ReadSkyMap loads a pixelized probability map from a HEALPix FITS file.
// The probability column is located by TTYPE (PROB, falling back to the
// first column). NESTED ordering is rejected; BAYESTAR maps carry RING.
func ReadSkyMap(path string) (*model.SkyProbabilityMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sky map: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip sky map %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return readSkyMapFrom(r, path)
}

func readSkyMapFrom(r io.Reader, path string) (*model.SkyProbabilityMap, error) {
	primary, err := readFITSHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: primary header: %w", path, err)
	}
	if naxis, ok := primary.int("NAXIS"); !ok || naxis != 0 {
		return nil, fmt.Errorf("%s: expected header-only primary HDU", path)
	}

	ext, err := readFITSHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: extension header: %w", path, err)
	}
	if xt := ext.str("XTENSION"); xt != "BINTABLE" {
		return nil, fmt.Errorf("%s: expected BINTABLE extension, got %q", path, xt)
	}
	if ord := strings.ToUpper(ext.str("ORDERING")); ord != "" && ord != "RING" {
		return nil, fmt.Errorf("%s: unsupported HEALPix ordering %q", path, ord)
	}

	rowBytes, ok := ext.int("NAXIS1")
	if !ok {
		return nil, fmt.Errorf("%s: missing NAXIS1", path)
	}
	rows, ok := ext.int("NAXIS2")
	if !ok {
		return nil, fmt.Errorf("%s: missing NAXIS2", path)
	}
	nfields, ok := ext.int("TFIELDS")
	if !ok || nfields < 1 {
		return nil, fmt.Errorf("%s: missing TFIELDS", path)
	}

	// Locate the probability column and its byte offset within a row.
	colIdx := 0
	for i := 1; i <= nfields; i++ {
		name := strings.ToUpper(strings.TrimSpace(ext.str(fmt.Sprintf("TTYPE%d", i))))
		if name == "PROB" || name == "PROBABILITY" {
			colIdx = i - 1
			break
		}
	}
	offset := 0
	var repeat, elemSize int
	for i := 0; i <= colIdx; i++ {
		rep, size, err := tformWidth(ext.str(fmt.Sprintf("TFORM%d", i+1)))
		if err != nil {
			return nil, fmt.Errorf("%s: column %d: %w", path, i+1, err)
		}
		if i < colIdx {
			offset += rep * size
			continue
		}
		repeat, elemSize = rep, size
	}
	if elemSize != 4 && elemSize != 8 {
		return nil, fmt.Errorf("%s: probability column must be float32 or float64", path)
	}

	data := make([]byte, rows*rowBytes)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%s: reading table data: %w", path, err)
	}

	pixels := make([]float64, 0, rows*repeat)
	for row := 0; row < rows; row++ {
		base := row*rowBytes + offset
		for k := 0; k < repeat; k++ {
			cell := data[base+k*elemSize:]
			if elemSize == 4 {
				pixels = append(pixels, float64(math.Float32frombits(binary.BigEndian.Uint32(cell))))
			} else {
				pixels = append(pixels, math.Float64frombits(binary.BigEndian.Uint64(cell)))
			}
		}
	}

	nside, err := NpixToNside(len(pixels))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if declared, ok := ext.int("NSIDE"); ok && declared != nside {
		return nil, fmt.Errorf("%s: NSIDE=%d disagrees with %d pixels", path, declared, len(pixels))
	}

	var sum float64
	for _, p := range pixels {
		sum += p
	}
	if math.Abs(sum-1) > probSumTolerance {
		return nil, fmt.Errorf("%s: pixel probabilities sum to %.6f, want 1", path, sum)
	}

	return &model.SkyProbabilityMap{
		Pixels:        pixels,
		Nside:         nside,
		PixelAreaDeg2: PixelAreaDeg2(nside),
	}, nil
}
