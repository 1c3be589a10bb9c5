package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/tiff"

	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/types"
)

var _ = fmt.Print

// pixel returns the image position of the node with canonical indices
// (r, g, b).
func pixel(layout ImageLayout, n, r, g, b int) (x, y int) {
	if layout == Horizontal {
		return b*n + r, g
	}
	return b, r*n + g
}

func encode_image(w io.Writer, t *lut.Table, cfg *config) error {
	n := t.Size
	width, height := n, n*n
	if cfg.layout == Horizontal {
		width, height = height, width
	}
	var img image.Image
	var set func(x, y int, v [3]float64)
	switch cfg.image_bits {
	case 8:
		i := image.NewNRGBA(image.Rect(0, 0, width, height))
		set = func(x, y int, v [3]float64) {
			i.SetNRGBA(x, y, color.NRGBA{uint8(quantize(v[0], 0xff)), uint8(quantize(v[1], 0xff)), uint8(quantize(v[2], 0xff)), 0xff})
		}
		img = i
	case 16:
		i := image.NewNRGBA64(image.Rect(0, 0, width, height))
		set = func(x, y int, v [3]float64) {
			i.SetNRGBA64(x, y, color.NRGBA64{uint16(quantize(v[0], 0xffff)), uint16(quantize(v[1], 0xffff)), uint16(quantize(v[2], 0xffff)), 0xffff})
		}
		img = i
	default:
		return fmt.Errorf("unsupported image LUT bit depth: %d", cfg.image_bits)
	}
	for r := range n {
		for g := range n {
			for b := range n {
				x, y := pixel(cfg.layout, n, r, g, b)
				set(x, y, t.Node(r, g, b))
			}
		}
	}
	if cfg.container == TIFF {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return png.Encode(w, img)
}

var png_signature = []byte("\x89PNG\r\n\x1a\n")

func decode_image(r io.Reader) (*lut.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var img image.Image
	if bytes.HasPrefix(data, png_signature) {
		img, err = png.Decode(bytes.NewReader(data))
	} else {
		img, err = tiff.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	var layout ImageLayout
	var n int
	switch {
	case height == width*width:
		layout, n = Vertical, width
	case width == height*height:
		layout, n = Horizontal, height
	default:
		return nil, fmt.Errorf("%w: a %dx%d image is not a LUT", ErrMalformed, width, height)
	}
	t, err := lut.New(n, types.DeviceRGB, types.DeviceRGB)
	if err != nil {
		return nil, err
	}
	for r := range n {
		for g := range n {
			for b := range n {
				x, y := pixel(layout, n, r, g, b)
				c := color.NRGBA64Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA64)
				t.CLUT[t.Offset(r, g, b)] = types.RGB(float64(c.R)/0xffff, float64(c.G)/0xffff, float64(c.B)/0xffff)
			}
		}
	}
	return t, nil
}
