package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileFingerprint_Deterministic(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "clip.mp4")
	if err := os.WriteFile(path, []byte("some video bytes"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	fp1, err := FileFingerprint(path)
	if err != nil {
		t.Fatalf("FileFingerprint failed: %v", err)
	}
	fp2, err := FileFingerprint(path)
	if err != nil {
		t.Fatalf("FileFingerprint failed: %v", err)
	}
	if fp1 != fp2 {
		t.Errorf("fingerprint not deterministic: %s vs %s", fp1, fp2)
	}
	if len(fp1) != 32 {
		t.Errorf("fingerprint length %d, want 32 hex chars", len(fp1))
	}
}

func TestFileFingerprint_ChangesWithContent(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "clip.mp4")
	if err := os.WriteFile(path, []byte("version one"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	fp1, err := FileFingerprint(path)
	if err != nil {
		t.Fatalf("FileFingerprint failed: %v", err)
	}

	// Force a different mtime too, so both inputs move.
	if err := os.WriteFile(path, []byte("version two!"), 0644); err != nil {
		t.Fatalf("rewrite temp file: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	fp2, err := FileFingerprint(path)
	if err != nil {
		t.Fatalf("FileFingerprint failed: %v", err)
	}
	if fp1 == fp2 {
		t.Error("fingerprint unchanged after content change")
	}
}

func TestFileFingerprint_MissingFile(t *testing.T) {
	if _, err := FileFingerprint("/nonexistent/clip.mp4"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestVideoID_StableAndDistinct(t *testing.T) {
	a1 := VideoID("/videos/a.mp4")
	a2 := VideoID("/videos/a.mp4")
	b := VideoID("/videos/b.mp4")
	if a1 != a2 {
		t.Error("VideoID not stable for the same path")
	}
	if a1 == b {
		t.Error("VideoID collision for different paths")
	}
}
