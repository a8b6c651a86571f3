package injection

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMissingNetwork reports an SNR file without the required Network
// entry.
var ErrMissingNetwork = errors.New("snr file: missing Network entry")

const snrFileName = "snr.txt"

// SNRPath locates the recovered-SNR sidecar for a map file: snr.txt two
// directories above the map (the maps live under <event>/post/).
func SNRPath(mapPath string) string {
	return filepath.Join(filepath.Dir(filepath.Dir(mapPath)), snrFileName)
}

// ParseSNRFile reads a plain-text sidecar of "Key: Value" lines with
// float values and returns the table. The Network key is required.
func ParseSNRFile(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snr file: open %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]float64)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("snr file: %s: malformed line %q", path, line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("snr file: %s: value for %q: %w", path, strings.TrimSpace(key), err)
		}
		out[strings.TrimSpace(key)] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("snr file: read %s: %w", path, err)
	}

	if _, ok := out["Network"]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingNetwork, path)
	}
	return out, nil
}
