package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var (
	// frame offsets tried in order; the later offset is preferred as it
	// skips fade-in/intro frames, the earlier one is the retry
	PrimaryFrameOffset  = 1 * time.Second
	FallbackFrameOffset = 0 * time.Second
	// hard wall-clock budget for the whole extraction, both attempts
	ExtractTimeout = 20 * time.Second
)

// FFmpegPath is the binary invoked for frame extraction. Overridable for
// deployments with a non-standard install location.
var FFmpegPath = "ffmpeg"

// ExtractFrame writes the video to a temp file and pulls one still frame
// out with ffmpeg. Extraction is attempted at PrimaryFrameOffset and
// retried once at FallbackFrameOffset. All temp files are removed before
// returning, on every path including timeout.
func ExtractFrame(ctx context.Context, video []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, ExtractTimeout)
	defer cancel()

	in, err := os.CreateTemp("", "steward-video-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp video file: %w", err)
	}
	defer func() { _ = os.Remove(in.Name()) }()

	if _, err := in.Write(video); err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("writing temp video file: %w", err)
	}
	if err := in.Close(); err != nil {
		return nil, fmt.Errorf("closing temp video file: %w", err)
	}

	out := filepath.Join(os.TempDir(), "steward-frame-"+uuid.NewString()+".jpg")
	defer func() { _ = os.Remove(out) }()

	frame, primaryErr := runFFmpeg(ctx, in.Name(), out, PrimaryFrameOffset)
	if primaryErr == nil {
		return frame, nil
	}

	frame, retryErr := runFFmpeg(ctx, in.Name(), out, FallbackFrameOffset)
	if retryErr == nil {
		return frame, nil
	}
	return nil, fmt.Errorf("frame extraction failed (primary: %v): %w", primaryErr, retryErr)
}

func runFFmpeg(ctx context.Context, inPath, outPath string, offset time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, FFmpegPath,
		"-y",
		"-ss", fmt.Sprintf("%.2f", offset.Seconds()),
		"-i", inPath,
		"-frames:v", "1",
		"-q:v", "3",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w (%s)", err, truncate(string(out), 200))
	}
	return os.ReadFile(outPath)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
