// Package scanner walks a library directory, fingerprints video files,
// probes their metadata, generates preview artifacts and records
// everything in the catalog.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/vidshelf/pkg/adapters/spritegen"
	"github.com/user/vidshelf/pkg/catalog"
	"github.com/user/vidshelf/pkg/config"
	"github.com/user/vidshelf/pkg/pipeline"
	"github.com/user/vidshelf/pkg/ports"
)

// DataDirName is the per-library directory holding the catalog
// database and generated artifacts.
const DataDirName = ".vidshelf"

// Status describes the phase a scan is in.
type Status int

const (
	StatusCounting Status = iota
	StatusScanning
	StatusComplete
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusCounting:
		return "counting"
	case StatusScanning:
		return "scanning"
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress is a snapshot of scan state for the UI.
type Progress struct {
	Status      Status
	TotalVideos int
	Processed   int
	Skipped     int
	CurrentFile string
}

// ArtifactGenerator builds thumbnail and sprite-sheet JPEGs.
// *spritegen.Generator satisfies it.
type ArtifactGenerator interface {
	Thumbnail(path string, durationSec float64, width int, quality int) ([]byte, error)
	SpriteSheet(path string, durationSec float64, opts spritegen.Options) ([]byte, error)
}

// errSkipKnown short-circuits the per-file pipeline for files whose
// fingerprint is already in the catalog.
var errSkipKnown = errors.New("scanner: file already cataloged")

// Scanner runs scans against one catalog store.
type Scanner struct {
	store     *catalog.Store
	prober    ports.MediaProber
	artifacts ArtifactGenerator
	fs        ports.FileSystem
	log       ports.Logger
	cfg       config.Config

	mu       sync.Mutex
	progress Progress
}

// New creates a Scanner.
func New(store *catalog.Store, prober ports.MediaProber, artifacts ArtifactGenerator, filesystem ports.FileSystem, log ports.Logger, cfg config.Config) *Scanner {
	return &Scanner{
		store:     store,
		prober:    prober,
		artifacts: artifacts,
		fs:        filesystem,
		log:       log.WithComponent("scanner"),
		cfg:       cfg,
	}
}

// Progress returns a snapshot of the current scan state. Safe to call
// from any goroutine while Scan runs.
func (s *Scanner) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Scan walks root, processes every new video file and returns the
// records added to the catalog. Per-file failures are logged and
// skipped; only walk or store failures abort the scan.
func (s *Scanner) Scan(ctx context.Context, root string) ([]catalog.Video, error) {
	s.setStatus(StatusCounting)

	paths, err := s.findVideoFiles(root)
	if err != nil {
		s.setStatus(StatusFailed)
		return nil, err
	}

	s.mu.Lock()
	s.progress.TotalVideos = len(paths)
	s.progress.Status = StatusScanning
	s.mu.Unlock()

	proxiesDir := filepath.Join(root, DataDirName, "proxies")
	if err := s.fs.MkdirAll(proxiesDir); err != nil {
		s.setStatus(StatusFailed)
		return nil, err
	}

	known, err := s.store.Fingerprints()
	if err != nil {
		s.setStatus(StatusFailed)
		return nil, err
	}

	// Process files in parallel; all store writes happen afterwards on
	// this goroutine.
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	jobs := make(chan string)
	results := make(chan *catalog.Video)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				v, err := s.processFile(ctx, path, proxiesDir, known)
				switch {
				case errors.Is(err, errSkipKnown):
					s.bumpSkipped()
				case err != nil:
					s.log.Warn("skipping %s: %v", path, err)
					s.bumpSkipped()
				default:
					results <- v
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var videos []catalog.Video
	for v := range results {
		if err := s.store.Upsert(v); err != nil {
			s.log.Error("store %s: %v", v.Path, err)
			continue
		}
		videos = append(videos, *v)
		s.bumpProcessed()
	}

	if ctx.Err() != nil {
		s.setStatus(StatusFailed)
		return videos, ctx.Err()
	}
	s.setStatus(StatusComplete)
	return videos, nil
}

// processFile runs the per-file pipeline: fingerprint, probe, generate
// artifacts, build the catalog record.
func (s *Scanner) processFile(ctx context.Context, path, proxiesDir string, known map[string]struct{}) (*catalog.Video, error) {
	s.setCurrentFile(filepath.Base(path))

	fingerprintStage := pipeline.StageFunc[string, string](
		func(ctx context.Context, path string) (string, error) {
			fp, err := catalog.FileFingerprint(path)
			if err != nil {
				return "", err
			}
			if _, ok := known[fp]; ok {
				return "", errSkipKnown
			}
			return fp, nil
		})

	probeStage := pipeline.StageFunc[string, ports.MediaInfo](
		func(ctx context.Context, path string) (ports.MediaInfo, error) {
			return s.prober.Probe(path)
		})

	fp, err := fingerprintStage.Execute(ctx, path)
	if err != nil {
		return nil, err
	}
	info, err := probeStage.Execute(ctx, path)
	if err != nil {
		return nil, err
	}

	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	v := &catalog.Video{
		ID:          catalog.VideoID(path),
		Path:        path,
		Name:        filepath.Base(path),
		SizeBytes:   st.Size(),
		DurationSec: info.DurationSec,
		Width:       info.Width,
		Height:      info.Height,
		AddedAt:     st.ModTime(),
		Directory:   filepath.Dir(path),
		Fingerprint: fp,
	}
	s.generateArtifacts(v, proxiesDir)
	return v, nil
}

// generateArtifacts writes thumbnail and sprite JPEGs. Failures leave
// the corresponding path empty; the record is still cataloged.
func (s *Scanner) generateArtifacts(v *catalog.Video, proxiesDir string) {
	prefix := v.Fingerprint[:16]

	if data, err := s.artifacts.Thumbnail(v.Path, v.DurationSec, s.cfg.ThumbnailWidth, s.cfg.ThumbnailJPEGQ); err != nil {
		s.log.Debug("thumbnail for %s: %v", v.Path, err)
	} else {
		thumbPath := filepath.Join(proxiesDir, prefix+"_thumb.jpg")
		if err := s.fs.WriteFile(thumbPath, data); err != nil {
			s.log.Warn("write thumbnail for %s: %v", v.Path, err)
		} else {
			v.ThumbnailPath = thumbPath
		}
	}

	opts := spritegen.Options{
		Columns:   s.cfg.SpriteColumns,
		Rows:      s.cfg.SpriteRows,
		TileWidth: s.cfg.SpriteTileWidth,
	}
	if data, err := s.artifacts.SpriteSheet(v.Path, v.DurationSec, opts); err != nil {
		s.log.Debug("sprite sheet for %s: %v", v.Path, err)
	} else {
		spritePath := filepath.Join(proxiesDir, prefix+"_sprite.jpg")
		if err := s.fs.WriteFile(spritePath, data); err != nil {
			s.log.Warn("write sprite sheet for %s: %v", v.Path, err)
		} else {
			v.SpritePath = spritePath
		}
	}
}

// findVideoFiles walks root collecting files with a known video
// extension, pruning junk directories.
func (s *Scanner) findVideoFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			for _, skip := range s.cfg.SkipDirs {
				if name == skip {
					return filepath.SkipDir
				}
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, want := range s.cfg.Extensions {
			if ext == want {
				paths = append(paths, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *Scanner) setStatus(st Status) {
	s.mu.Lock()
	s.progress.Status = st
	s.mu.Unlock()
}

func (s *Scanner) setCurrentFile(name string) {
	s.mu.Lock()
	s.progress.CurrentFile = name
	s.mu.Unlock()
}

func (s *Scanner) bumpProcessed() {
	s.mu.Lock()
	s.progress.Processed++
	s.mu.Unlock()
}

func (s *Scanner) bumpSkipped() {
	s.mu.Lock()
	s.progress.Skipped++
	s.mu.Unlock()
}
