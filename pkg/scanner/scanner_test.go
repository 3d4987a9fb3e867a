package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/vidshelf/pkg/adapters/logger"
	"github.com/user/vidshelf/pkg/adapters/spritegen"
	"github.com/user/vidshelf/pkg/catalog"
	"github.com/user/vidshelf/pkg/config"
	"github.com/user/vidshelf/pkg/mocks"
	"github.com/user/vidshelf/pkg/ports"
)

func newFakeProber(failFor string) *mocks.Prober {
	return &mocks.Prober{
		ProbeFunc: func(path string) (ports.MediaInfo, error) {
			if failFor != "" && filepath.Base(path) == failFor {
				return ports.MediaInfo{}, errors.New("fake: probe failed")
			}
			return ports.MediaInfo{DurationSec: 42, Width: 1280, Height: 720}, nil
		},
	}
}

type fakeArtifacts struct{}

func (a *fakeArtifacts) Thumbnail(path string, durationSec float64, width, quality int) ([]byte, error) {
	return []byte("thumb"), nil
}

func (a *fakeArtifacts) SpriteSheet(path string, durationSec float64, opts spritegen.Options) ([]byte, error) {
	return []byte("sprite"), nil
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("fake video bytes: "+path), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newTestScanner(t *testing.T, root string, prober ports.MediaProber) (*Scanner, *catalog.Store, *mocks.FileSystem) {
	t.Helper()
	store, err := catalog.OpenStore(filepath.Join(root, "catalog.db"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	fs := mocks.NewFileSystem()
	cfg := config.Defaults()
	cfg.Workers = 2
	return New(store, prober, &fakeArtifacts{}, fs, logger.NewNoop(), cfg), store, fs
}

func TestScan_CatalogsVideos(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp4"))
	writeFile(t, filepath.Join(root, "sub", "b.mkv"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "node_modules", "junk.mp4"))

	s, store, fs := newTestScanner(t, root, newFakeProber(""))
	videos, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(videos))
	}

	all, err := store.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("store has %d videos, want 2", len(all))
	}
	for _, v := range all {
		if v.DurationSec != 42 {
			t.Errorf("%s: duration %f, want 42", v.Name, v.DurationSec)
		}
		if v.ThumbnailPath == "" || v.SpritePath == "" {
			t.Errorf("%s: missing artifact paths", v.Name)
		}
		if data, ok := fs.GetFile(v.ThumbnailPath); !ok || string(data) != "thumb" {
			t.Errorf("%s: thumbnail not written", v.Name)
		}
		if data, ok := fs.GetFile(v.SpritePath); !ok || string(data) != "sprite" {
			t.Errorf("%s: sprite sheet not written", v.Name)
		}
	}

	if p := s.Progress(); p.Status != StatusComplete || p.Processed != 2 {
		t.Errorf("progress %+v, want complete with 2 processed", p)
	}
}

func TestScan_RescanSkipsKnownFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp4"))
	writeFile(t, filepath.Join(root, "b.mp4"))

	s, _, _ := newTestScanner(t, root, newFakeProber(""))
	if _, err := s.Scan(context.Background(), root); err != nil {
		t.Fatalf("first Scan failed: %v", err)
	}

	videos, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}
	if len(videos) != 0 {
		t.Errorf("second scan produced %d videos, want 0", len(videos))
	}
	if p := s.Progress(); p.Skipped != 2 {
		t.Errorf("skipped %d, want 2", p.Skipped)
	}
}

func TestScan_ProbeFailureSkipsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good.mp4"))
	writeFile(t, filepath.Join(root, "bad.mp4"))

	s, _, _ := newTestScanner(t, root, newFakeProber("bad.mp4"))
	videos, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(videos) != 1 || videos[0].Name != "good.mp4" {
		t.Fatalf("videos %v, want only good.mp4", videos)
	}
}

func TestScan_ArtifactWriteFailureStillCatalogs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp4"))

	s, store, fs := newTestScanner(t, root, newFakeProber(""))
	fs.WriteFileFunc = func(path string, data []byte) error {
		return errors.New("fake: disk full")
	}

	videos, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("got %d videos, want 1", len(videos))
	}
	all, err := store.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("store has %d videos, want 1", len(all))
	}
	if all[0].ThumbnailPath != "" || all[0].SpritePath != "" {
		t.Errorf("artifact paths should be empty when writes fail: %+v", all[0])
	}
}

func TestScan_EmptyDirectory(t *testing.T) {
	root := t.TempDir()
	s, _, _ := newTestScanner(t, root, newFakeProber(""))

	videos, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(videos) != 0 {
		t.Errorf("got %d videos from empty directory", len(videos))
	}
	if p := s.Progress(); p.Status != StatusComplete {
		t.Errorf("status %v, want complete", p.Status)
	}
}
