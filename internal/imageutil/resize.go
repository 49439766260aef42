package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// DefaultMaxDimension is the default maximum width or height in pixels
const DefaultMaxDimension = 1024

// Config holds configuration for image downscaling
type Config struct {
	MaxDimension int // Maximum width or height (default 1024)
	Quality      int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns the default downscale configuration
func DefaultConfig() *Config {
	return &Config{
		MaxDimension: DefaultMaxDimension,
		Quality:      85,
	}
}

// Downscale shrinks an image that exceeds the max dimension, maintaining
// aspect ratio. Images already within bounds are returned unchanged.
// Formats the stdlib cannot decode (gif frames, webp) return an error and
// the caller should send the original bytes instead.
func Downscale(imageData []byte, config *Config) ([]byte, error) {
	if config == nil {
		config = DefaultConfig()
	}

	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= config.MaxDimension && height <= config.MaxDimension {
		return imageData, nil
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = config.MaxDimension
		newHeight = int(float64(height) * float64(config.MaxDimension) / float64(width))
	} else {
		newHeight = config.MaxDimension
		newWidth = int(float64(width) * float64(config.MaxDimension) / float64(height))
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: config.Quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}
