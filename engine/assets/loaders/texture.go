package loaders

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	// Decoders registered with image.Decode.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/ose/engine/resources"
)

// ImageLoader decodes PNG, JPEG, BMP, TIFF and WebP files into tightly packed
// 8-bit pixels. Grayscale images keep one channel, everything else is RGBA.
type ImageLoader struct {
	// FlipY stores rows bottom to top, as OpenGL style backends expect.
	FlipY bool
}

func NewImageLoader(flipY bool) *ImageLoader {
	return &ImageLoader{FlipY: flipY}
}

func (il *ImageLoader) LoadTexture(path string) (resources.TextureData, error) {
	file, err := os.Open(path)
	if err != nil {
		return resources.TextureData{}, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return resources.TextureData{}, fmt.Errorf("decode %s: %w", path, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return resources.TextureData{}, fmt.Errorf("decode %s: empty %s image", path, format)
	}

	var pixels []byte
	var channels int
	switch src := img.(type) {
	case *image.NRGBA:
		channels = 4
		pixels = make([]byte, 0, width*height*4)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			start := src.PixOffset(bounds.Min.X, y)
			pixels = append(pixels, src.Pix[start:start+width*4]...)
		}
	case *image.Gray:
		channels = 1
		gray := image.NewGray(image.Rect(0, 0, width, height))
		draw.Draw(gray, gray.Bounds(), src, bounds.Min, draw.Src)
		pixels = gray.Pix
	default:
		channels = 4
		rgba := image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
		pixels = rgba.Pix
	}

	if il.FlipY {
		flipRows(pixels, width*channels, height)
	}

	return resources.TextureData{
		Pixels:   pixels,
		Width:    width,
		Height:   height,
		Channels: channels,
	}, nil
}

// FreeTexture is a no-op; the pixel slice is garbage collected once the
// texture drops it.
func (il *ImageLoader) FreeTexture(resources.TextureData) {}

func flipRows(pixels []byte, stride, rows int) {
	tmp := make([]byte, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pixels[top*stride : (top+1)*stride]
		b := pixels[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
