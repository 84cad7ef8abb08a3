package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

const validCSV = `timestamp,open,high,low,close,volume
03/04/2021,100,105,99,104,1000
04/04/2021,104,106,100,101,1200
05/04/2021,101,103,97,98,900
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestLibrary(t *testing.T) (*Library, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "btc_daily.csv", validCSV)
	writeFile(t, dir, "eth_daily.csv", validCSV)
	writeFile(t, dir, "broken.csv", "no,usable,header\n1,2,3\n")
	writeFile(t, dir, "notes.txt", "not a csv")

	lib := NewLibrary(dir, zerolog.Nop())
	if err := lib.Rescan(); err != nil {
		t.Fatalf("Rescan() error: %v", err)
	}
	return lib, dir
}

func TestLibrary_List(t *testing.T) {
	lib, _ := newTestLibrary(t)

	files := lib.List()
	if len(files) != 3 {
		t.Fatalf("List() returned %d files, want 3", len(files))
	}

	wantNames := []string{"broken.csv", "btc_daily.csv", "eth_daily.csv"}
	for i, want := range wantNames {
		if files[i].Name != want {
			t.Errorf("List()[%d].Name = %q, want %q", i, files[i].Name, want)
		}
	}

	if files[1].Rows != 3 {
		t.Errorf("btc_daily.csv Rows = %d, want 3", files[1].Rows)
	}
	if files[0].Rows != 0 {
		t.Errorf("broken.csv Rows = %d, want 0", files[0].Rows)
	}
}

func TestLibrary_Load(t *testing.T) {
	lib, _ := newTestLibrary(t)

	series, err := lib.Load("btc_daily.csv")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if series.Len() != 3 {
		t.Errorf("Load() rows = %d, want 3", series.Len())
	}
	if series.Source != "btc_daily.csv" {
		t.Errorf("Load() source = %q, want %q", series.Source, "btc_daily.csv")
	}

	if _, err := lib.Load("broken.csv"); err == nil {
		t.Error("Load(broken.csv) expected parse error, got nil")
	}
	if _, err := lib.Load("missing.csv"); err == nil {
		t.Error("Load(missing.csv) expected error, got nil")
	}
}

func TestLibrary_LoadRejectsPaths(t *testing.T) {
	lib, _ := newTestLibrary(t)

	for _, name := range []string{
		"",
		"../secrets.csv",
		"sub/dir.csv",
		"notes.txt",
	} {
		if _, err := lib.Load(name); err == nil {
			t.Errorf("Load(%q) expected error, got nil", name)
		}
	}
}

func TestLibrary_RescanPicksUpNewFiles(t *testing.T) {
	lib, dir := newTestLibrary(t)

	writeFile(t, dir, "ada_daily.csv", validCSV)
	if err := lib.Rescan(); err != nil {
		t.Fatalf("Rescan() error: %v", err)
	}

	files := lib.List()
	if len(files) != 4 {
		t.Fatalf("List() after rescan returned %d files, want 4", len(files))
	}
	if files[0].Name != "ada_daily.csv" {
		t.Errorf("List()[0].Name = %q, want %q", files[0].Name, "ada_daily.csv")
	}
}
