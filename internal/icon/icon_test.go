package icon

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadSetRejectsDuplicateNames exercises the startup refusal without
// requiring real decodable images: the first placeholder fails to decode
// and is recorded as skipped, and addFile then refuses the second file
// by name before trying to decode it.
func TestLoadSetRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "survivors", "medic.png"), "not a real png")
	mustWriteFile(t, filepath.Join(dir, "hunters", "medic.png"), "not a real png either")

	_, err := LoadSet(dir)
	if err == nil {
		t.Fatal("expected LoadSet to refuse a character name present in both survivors/ and hunters/")
	}
}

// TestLoadSetTemplatesFixture requires a directory of real template PNGs
// checked out alongside this test; skips when that fixture is absent.
func TestLoadSetTemplatesFixture(t *testing.T) {
	dir := "testdata/templates"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Skipf("skipping: %s not present; populate it with survivors/ and hunters/ icon PNGs to exercise LoadSet end to end", dir)
	}

	set, err := LoadSet(dir)
	if err != nil {
		t.Fatalf("LoadSet() error = %v", err)
	}
	defer set.Close()

	if len(set.templates) == 0 {
		t.Error("expected at least one loaded template")
	}
}

func mustWriteFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}
