package vision

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidFrame is returned for frames the preprocessor cannot handle:
// nil buffers, zero dimensions, or unsupported channel counts.
var ErrInvalidFrame = errors.New("invalid frame")

// ChannelOrder describes the interleaving of a 3-channel frame. Camera
// sources tend to hand out BGR, decoded image files RGB.
type ChannelOrder int

const (
	OrderRGB ChannelOrder = iota
	OrderBGR
)

// Frame is one raw captured or loaded image buffer: interleaved 8-bit
// samples, row-major. Frames are ephemeral; the capture step that produced
// one owns it and drops it after preprocessing.
type Frame struct {
	Width    int
	Height   int
	Channels int // 1 (grayscale) or 3
	Order    ChannelOrder
	Pix      []byte
}

// FrameFromImage converts a decoded image into an RGB frame.
func FrameFromImage(img image.Image) Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			pix = append(pix, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return Frame{Width: w, Height: h, Channels: 3, Order: OrderRGB, Pix: pix}
}

func (f Frame) validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: zero-sized frame %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	if f.Channels != 1 && f.Channels != 3 {
		return fmt.Errorf("%w: unsupported channel count %d", ErrInvalidFrame, f.Channels)
	}
	if len(f.Pix) != f.Width*f.Height*f.Channels {
		return fmt.Errorf("%w: pixel buffer length %d does not match %dx%dx%d",
			ErrInvalidFrame, len(f.Pix), f.Width, f.Height, f.Channels)
	}
	return nil
}
