package filemgr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"mywall/models"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxEdge caps the wider dimension of an uploaded image.
	DefaultMaxEdge = 1920
	// DefaultQuality is the initial JPEG quality factor.
	DefaultQuality = 0.75

	compressTarget = 500_000
	qualityStep    = 0.1
	qualityFloor   = 0.5
)

// CompressImage re-encodes an image as JPEG, shrinking the wider dimension to
// maxEdge when it exceeds it and stepping quality down by 0.1 while the
// result stays above 500 KB. Quality never drops to the floor or below, so
// the loop is bounded and the last step runs at 0.55. Returns the encoded
// bytes and the quality actually used.
func CompressImage(name string, data []byte, maxEdge int, quality float64) ([]byte, float64, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", name, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	q := quality
	for {
		var buf bytes.Buffer
		opts := &jpeg.Options{Quality: int(math.Round(q * 100))}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, 0, fmt.Errorf("encode %s: %w", name, err)
		}
		if buf.Len() <= compressTarget || q-qualityStep <= qualityFloor {
			return buf.Bytes(), q, nil
		}
		q -= qualityStep
	}
}

// PrepareUpload runs images through the compressor and passes every other
// kind through unchanged. The returned content type reflects the re-encode.
func PrepareUpload(kind models.MediaKind, name, mimeType string, data []byte) ([]byte, string, error) {
	if kind != models.KindImage {
		return data, mimeType, nil
	}
	out, _, err := CompressImage(name, data, DefaultMaxEdge, DefaultQuality)
	if err != nil {
		return nil, "", err
	}
	return out, "image/jpeg", nil
}
