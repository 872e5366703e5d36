// Package media prepares inbound media for classification: images are
// bounded in size and re-encoded, videos are reduced to a single
// representative still frame.
package media

import (
	"bytes"
	"image"
	"log/slog"

	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

var (
	// longest allowed dimension of a classifier payload; larger images are
	// scaled down preserving aspect ratio
	MaxImageDim = 1280
	// JPEG quality for re-encoded payloads
	JPEGQuality = 80
)

// NormalizeImage decodes, scales down, and re-encodes an image so the
// classifier payload stays bounded in size and cost. When the image can not
// be decoded or re-encoded the original bytes are returned unchanged;
// moderation proceeds on the raw payload rather than aborting.
func NormalizeImage(data []byte) []byte {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Debug("image decode failed, passing original through", "err", err, "size", len(data))
		return data
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > MaxImageDim || h > MaxImageDim {
		if w >= h {
			h = h * MaxImageDim / w
			w = MaxImageDim
		} else {
			w = w * MaxImageDim / h
			h = MaxImageDim
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		slog.Debug("image re-encode failed, passing original through", "err", err, "format", format)
		return data
	}
	return buf.Bytes()
}
