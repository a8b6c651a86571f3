package injection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadTable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "inj.json", `[
		{"geocent_end_time": 1126259462.4, "ra_deg": 96.0, "dec_deg": -72.8},
		{"geocent_end_time": 1126285462.0, "ra_deg": 201.4, "dec_deg": 12.7}
	]`)

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len = %d, want 2", table.Len())
	}

	rec, err := table.Record(1)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if rec.RADeg != 201.4 || rec.DecDeg != 12.7 {
		t.Fatalf("Record(1) = %+v", rec)
	}
}

func TestRecordOutOfRange(t *testing.T) {
	path := writeFile(t, t.TempDir(), "inj.json", `[{"geocent_end_time": 1}]`)
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, err := table.Record(1); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("Record(1) error = %v, want ErrNoRecord", err)
	}
	if _, err := table.Record(-1); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("Record(-1) error = %v, want ErrNoRecord", err)
	}
}

func TestLoadBadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "inj.json", `{"not": "an array"}`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSNRPath(t *testing.T) {
	got := SNRPath(filepath.Join("run", "7", "post", "skymap.fits.gz"))
	want := filepath.Join("run", "7", "snr.txt")
	if got != want {
		t.Fatalf("SNRPath = %q, want %q", got, want)
	}
}

func TestParseSNRFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "snr.txt", "H1: 8.4\nL1: 9.1\nNetwork: 12.9\n\n")

	snrs, err := ParseSNRFile(path)
	if err != nil {
		t.Fatalf("ParseSNRFile error: %v", err)
	}
	if snrs["Network"] != 12.9 {
		t.Fatalf("Network = %v, want 12.9", snrs["Network"])
	}
	if snrs["H1"] != 8.4 || snrs["L1"] != 9.1 {
		t.Fatalf("per-detector SNRs = %v", snrs)
	}
}

func TestParseSNRFileMissingNetwork(t *testing.T) {
	path := writeFile(t, t.TempDir(), "snr.txt", "H1: 8.4\n")
	if _, err := ParseSNRFile(path); !errors.Is(err, ErrMissingNetwork) {
		t.Fatalf("error = %v, want ErrMissingNetwork", err)
	}
}

func TestParseSNRFileMalformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "snr.txt", "no separator here\n")
	if _, err := ParseSNRFile(path); err == nil {
		t.Fatalf("expected error for malformed line")
	}

	path = writeFile(t, t.TempDir(), "snr.txt", "H1: not-a-number\n")
	if _, err := ParseSNRFile(path); err == nil {
		t.Fatalf("expected error for non-numeric value")
	}
}

func TestEventIndexFromPath(t *testing.T) {
	cases := []struct {
		path string
		want int
		ok   bool
	}{
		{"runs/injections/7/post/skymap.fits.gz", 7, true},
		{"runs/injections/123/post/skymap.fits.gz", 123, true},
		{"o3run/42/post/skymap.fits", 42, true},
		{"skymap_0.fits", 0, true},
		{"no/digits/here.fits", 0, false},
	}
	for _, c := range cases {
		got, err := EventIndexFromPath(c.path)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("EventIndexFromPath(%q) = %d, %v; want %d", c.path, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("EventIndexFromPath(%q) succeeded, want error", c.path)
		}
	}
}
