package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

const (
	EnvFFmpegPath  = "OSN_FFMPEG_PATH"
	EnvFFprobePath = "OSN_FFPROBE_PATH"
)

var ErrNotFound = errors.New("ffmpeg binary not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	overrideMu sync.Mutex
	override   BinaryPaths

	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// SetPaths pins binary locations from configuration. It must be called
// before the first lookup to take effect.
func SetPaths(paths BinaryPaths) {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	override = paths
}

func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		overrideMu.Lock()
		pinned := override
		overrideMu.Unlock()
		ensurePath, ensureErr = resolve(pinned, os.Getenv, exec.LookPath)
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

// FFprobePath is optional; stream listing is the only user.
func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	if paths.FFprobe == "" {
		return "", fmt.Errorf("%w: ffprobe", ErrNotFound)
	}
	return paths.FFprobe, nil
}

// resolve prefers explicit configuration, then the environment, then PATH.
func resolve(
	pinned BinaryPaths,
	getenv func(string) string,
	lookPath func(string) (string, error),
) (BinaryPaths, error) {
	paths := pinned
	if paths.FFmpeg == "" {
		paths.FFmpeg = getenv(EnvFFmpegPath)
	}
	if paths.FFprobe == "" {
		paths.FFprobe = getenv(EnvFFprobePath)
	}

	if paths.FFmpeg == "" {
		if found, err := lookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := lookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}

	if paths.FFmpeg == "" {
		return BinaryPaths{}, fmt.Errorf(
			"%w: install ffmpeg or set %s",
			ErrNotFound,
			EnvFFmpegPath,
		)
	}
	return paths, nil
}
