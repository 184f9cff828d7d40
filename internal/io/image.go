package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageService provides the image operations needed to place card images.
//
// ImageService is used to:
//   - Detect the format of a downloaded card image
//   - Convert images the PDF writer cannot embed into JPEG
//   - Scale card images onto a raster page
//
// Example usage:
//
//	svc := NewImageService()
//
//	format, _ := svc.DetectFormat(data) // "png", "jpeg", "gif" or "webp"
//	if format == "webp" {
//	    data, _ = svc.ConvertToJPEG(ctx, data)
//	}
type ImageService struct {
	quality int
}

// NewImageService creates a new ImageService encoding JPEG at quality 90.
func NewImageService() *ImageService {
	return &ImageService{quality: 90}
}

// DetectFormat returns the registered format name of the encoded image
// without decoding the pixels.
func (s *ImageService) DetectFormat(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("detect image format: %w", err)
	}
	return format, nil
}

// ConvertToJPEG converts an image to JPEG format.
//
// Returns the image as JPEG-encoded bytes with 90% quality. If the input is
// already JPEG, it is re-encoded.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// LoadImage decodes the image file at path.
func (s *ImageService) LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// DrawScaled scales src to fill r on dst. The aspect ratio is not kept:
// card images already carry the card's proportions plus bleed.
//
// The Catmull-Rom algorithm is used for high-quality scaling.
func (s *ImageService) DrawScaled(dst draw.Image, r image.Rectangle, src image.Image) {
	draw.CatmullRom.Scale(dst, r, src, src.Bounds(), draw.Over, nil)
}
