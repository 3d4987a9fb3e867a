// Package ffmpegcli drives the external ffmpeg/ffprobe executables for
// batch work: metadata probing of non-MP4 containers and still-frame
// extraction for thumbnails and sprite sheets. The in-process decoder
// core is not involved here.
package ffmpegcli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg executable can be located.
	ErrFFmpegNotFound = errors.New("ffmpegcli: ffmpeg not found")
	// ErrFFprobeNotFound is returned when no ffprobe executable can be located.
	ErrFFprobeNotFound = errors.New("ffmpegcli: ffprobe not found")
)

var (
	customFFmpegPath  string
	customFFprobePath string
)

// SetFFmpegPath overrides ffmpeg executable discovery.
func SetFFmpegPath(path string) {
	customFFmpegPath = path
}

// SetFFprobePath overrides ffprobe executable discovery.
func SetFFprobePath(path string) {
	customFFprobePath = path
}

// findExecutable searches PATH and common install locations.
func findExecutable(name, custom string, notFound error) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", notFound, custom)
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName = name + ".exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\` + execName,
			`C:\Program Files\ffmpeg\bin\` + execName,
			`C:\Program Files (x86)\ffmpeg\bin\` + execName,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/" + name,
			"/usr/local/bin/" + name,
			"/opt/homebrew/bin/" + name,
			"/snap/bin/" + name,
		}
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", notFound
}

// FindFFmpeg locates the ffmpeg executable.
func FindFFmpeg() (string, error) {
	return findExecutable("ffmpeg", customFFmpegPath, ErrFFmpegNotFound)
}

// FindFFprobe locates the ffprobe executable.
func FindFFprobe() (string, error) {
	return findExecutable("ffprobe", customFFprobePath, ErrFFprobeNotFound)
}

// Available reports whether both executables can be found.
func Available() bool {
	_, errm := FindFFmpeg()
	_, errp := FindFFprobe()
	return errm == nil && errp == nil
}
