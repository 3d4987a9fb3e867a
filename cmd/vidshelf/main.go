// Package main provides the vidshelf CLI: scan a video library, probe
// files and exercise the decode subsystem from the terminal.
package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/user/vidshelf/pkg/adapters/ffmpegcli"
	"github.com/user/vidshelf/pkg/adapters/ffmpegdec"
	"github.com/user/vidshelf/pkg/adapters/logger"
	"github.com/user/vidshelf/pkg/adapters/mp4probe"
	"github.com/user/vidshelf/pkg/adapters/osfs"
	"github.com/user/vidshelf/pkg/adapters/spritegen"
	"github.com/user/vidshelf/pkg/catalog"
	"github.com/user/vidshelf/pkg/config"
	"github.com/user/vidshelf/pkg/hover"
	"github.com/user/vidshelf/pkg/playback"
	"github.com/user/vidshelf/pkg/ports"
	"github.com/user/vidshelf/pkg/scanner"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "vidshelf",
		Usage:   "browse and decode a local video collection",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn, error or quiet",
			},
		},
		Commands: []*cli.Command{
			scanCommand(),
			infoCommand(),
			frameCommand(),
			scrubCommand(),
			playCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves config file and log level flags into a Config
// and a console logger.
func loadConfig(c *cli.Context) (config.Config, ports.Logger, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, nil, err
		}
		cfg = loaded
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if cfg.FFmpegPath != "" {
		ffmpegcli.SetFFmpegPath(cfg.FFmpegPath)
	}
	if cfg.FFprobePath != "" {
		ffmpegcli.SetFFprobePath(cfg.FFprobePath)
	}
	return cfg, logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel)), nil
}

// chainProber tries the pure-Go MP4 probe first and falls back to
// ffprobe for everything else.
type chainProber struct {
	mp4     *mp4probe.Prober
	ffprobe *ffmpegcli.Prober
}

func newChainProber() *chainProber {
	return &chainProber{mp4: mp4probe.New(), ffprobe: ffmpegcli.NewProber()}
}

func (p *chainProber) Probe(path string) (ports.MediaInfo, error) {
	if p.mp4.Supports(path) {
		if info, err := p.mp4.Probe(path); err == nil {
			return info, nil
		}
	}
	return p.ffprobe.Probe(path)
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "scan a directory and populate its catalog",
		ArgsUsage: "<directory>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one directory argument")
			}
			root := c.Args().First()

			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}

			dbDir := fmt.Sprintf("%s/%s", root, scanner.DataDirName)
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return err
			}
			store, err := catalog.OpenStore(dbDir + "/catalog.db")
			if err != nil {
				return err
			}
			defer store.Close()

			gen := spritegen.New(ffmpegcli.NewExtractor())
			s := scanner.New(store, newChainProber(), gen, osfs.New(), log, cfg)

			videos, err := s.Scan(context.Background(), root)
			if err != nil {
				return err
			}
			p := s.Progress()
			log.Info("scan complete: %d added, %d skipped of %d found",
				len(videos), p.Skipped, p.TotalVideos)
			return nil
		},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print duration and dimensions of a video file",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file argument")
			}
			if _, _, err := loadConfig(c); err != nil {
				return err
			}

			info, err := newChainProber().Probe(c.Args().First())
			if err != nil {
				return err
			}
			fmt.Printf("duration: %.3fs\n", info.DurationSec)
			fmt.Printf("video:    %dx%d\n", info.Width, info.Height)
			return nil
		},
	}
}

func frameCommand() *cli.Command {
	return &cli.Command{
		Name:      "frame",
		Usage:     "decode one frame at a normalized position and write it as PNG",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:    "position",
				Aliases: []string{"p"},
				Value:   0.5,
				Usage:   "normalized position in [0,1]",
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    "output PNG path",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file argument")
			}
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}

			dec, err := ffmpegdec.Open(c.Args().First(), cfg.PreviewWidth)
			if err != nil {
				return err
			}
			defer dec.Close()

			frame, ok := dec.SeekAndDecode(c.Float64("position"))
			if !ok {
				return fmt.Errorf("no frame at position %f", c.Float64("position"))
			}

			img := &image.RGBA{
				Pix:    frame.RGBA,
				Stride: frame.Width * 4,
				Rect:   image.Rect(0, 0, frame.Width, frame.Height),
			}
			out, err := os.Create(c.String("output"))
			if err != nil {
				return err
			}
			defer out.Close()
			return png.Encode(out, img)
		},
	}
}

func scrubCommand() *cli.Command {
	return &cli.Command{
		Name:      "scrub",
		Usage:     "exercise the hover scrubber: decode preview frames at several positions",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.Float64SliceFlag{
				Name:    "position",
				Aliases: []string{"p"},
				Value:   cli.NewFloat64Slice(0.25, 0.5, 0.75),
				Usage:   "normalized positions in [0,1]",
			},
			&cli.StringFlag{
				Name:    "outdir",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "directory for the output PNGs",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file argument")
			}
			_, log, err := loadConfig(c)
			if err != nil {
				return err
			}
			path := c.Args().First()

			scrubber := hover.NewScrubber(ffmpegdec.NewOpener(), log)
			defer scrubber.Close()

			for _, pos := range c.Float64Slice("position") {
				scrubber.RequestFrame(path, pos)

				var frame *ports.Frame
				deadline := time.Now().Add(10 * time.Second)
				for frame == nil && time.Now().Before(deadline) {
					frame = scrubber.PollFrame()
					time.Sleep(10 * time.Millisecond)
				}
				if frame == nil {
					return fmt.Errorf("no frame at position %.3f", pos)
				}

				img := &image.RGBA{
					Pix:    frame.RGBA,
					Stride: frame.Width * 4,
					Rect:   image.Rect(0, 0, frame.Width, frame.Height),
				}
				name := filepath.Join(c.String("outdir"), fmt.Sprintf("scrub_%03.0f.png", pos*100))
				out, err := os.Create(name)
				if err != nil {
					return err
				}
				if err := png.Encode(out, img); err != nil {
					out.Close()
					return err
				}
				if err := out.Close(); err != nil {
					return err
				}
				fmt.Printf("%s (%.3fs)\n", name, frame.Timestamp)
			}
			return nil
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "decode a file in real time and report transport state",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "seconds",
				Value: 5,
				Usage: "how long to play before stopping",
			},
			&cli.Float64Flag{
				Name:  "from",
				Value: 0,
				Usage: "normalized start position in [0,1]",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file argument")
			}
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}

			player, err := playback.Open(ffmpegdec.NewOpener(), c.Args().First(), log, playback.Options{
				MaxWidth: cfg.PlaybackMaxWidth,
				FPS:      cfg.PlaybackFPS,
			})
			if err != nil {
				return err
			}
			defer player.Stop()

			if from := c.Float64("from"); from > 0 {
				player.Seek(from)
			}
			player.Play()

			frames := 0
			deadline := time.Now().Add(time.Duration(c.Float64("seconds") * float64(time.Second)))
			for time.Now().Before(deadline) && player.IsPlaying() {
				if f := player.GetFrame(); f != nil {
					frames++
					if frames%30 == 0 {
						log.Info("at %.2fs of %.2fs (%d frames)",
							player.CurrentTime(), player.Duration(), frames)
					}
				}
				time.Sleep(5 * time.Millisecond)
			}

			log.Info("played %d frames, stopped at %.2fs", frames, player.CurrentTime())
			return nil
		},
	}
}
