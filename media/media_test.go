package media

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countScratchFiles(t *testing.T) int {
	n := 0
	for _, pattern := range []string{"steward-video-*", "steward-frame-*"} {
		matches, err := filepath.Glob(filepath.Join(os.TempDir(), pattern))
		require.NoError(t, err)
		n += len(matches)
	}
	return n
}

func encodePNG(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeImageResizes(t *testing.T) {
	assert := assert.New(t)

	out := NormalizeImage(encodePNG(t, 4000, 2000))
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	assert.NoError(err)
	assert.Equal("jpeg", format)
	assert.Equal(MaxImageDim, cfg.Width)
	assert.Equal(MaxImageDim/2, cfg.Height)
}

func TestNormalizeImagePortrait(t *testing.T) {
	assert := assert.New(t)

	out := NormalizeImage(encodePNG(t, 500, 5000))
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	assert.NoError(err)
	assert.Equal(MaxImageDim, cfg.Height)
	assert.Equal(128, cfg.Width)
}

func TestNormalizeImageSmallStaysSmall(t *testing.T) {
	assert := assert.New(t)

	out := NormalizeImage(encodePNG(t, 100, 60))
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	assert.NoError(err)
	assert.Equal(100, cfg.Width)
	assert.Equal(60, cfg.Height)
}

func TestNormalizeImageJPEGInput(t *testing.T) {
	assert := assert.New(t)

	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	out := NormalizeImage(buf.Bytes())
	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	assert.NoError(err)
	assert.Equal("jpeg", format)
}

func TestNormalizeImageUndecodablePassthrough(t *testing.T) {
	assert := assert.New(t)

	garbage := []byte("definitely not an image")
	assert.Equal(garbage, NormalizeImage(garbage))
}

func TestExtractFrameGarbageInput(t *testing.T) {
	assert := assert.New(t)

	// not a video; both ffmpeg attempts fail and the error says so
	_, err := ExtractFrame(context.Background(), []byte("not a video"))
	assert.Error(err)
}

func TestExtractFrameRespectsDeadline(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	_, err := ExtractFrame(ctx, []byte("not a video"))
	assert.Error(err)
}

func TestExtractFrameCleansUpScratchFiles(t *testing.T) {
	assert := assert.New(t)
	before := countScratchFiles(t)

	// failed extraction
	_, err := ExtractFrame(context.Background(), []byte("not a video"))
	assert.Error(err)
	assert.Equal(before, countScratchFiles(t))

	// expired context
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	_, err = ExtractFrame(ctx, []byte("not a video"))
	assert.Error(err)
	assert.Equal(before, countScratchFiles(t))
}
