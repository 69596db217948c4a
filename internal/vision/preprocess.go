package vision

import (
	"image"

	"github.com/disintegration/imaging"
)

// Per-channel standardization constants (RGB order) the model was trained
// with. Raw 8-bit samples are scaled to [0,1] first: (v/255 - mean) / std.
var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// Tensor is the fixed-shape normalized input to the classifier: a flattened
// channel-major array of 3*Size*Size float32 values.
type Tensor struct {
	Data []float32
	Size int
}

// Shape returns the NCHW shape of the tensor.
func (t Tensor) Shape() []int64 {
	return []int64{1, 3, int64(t.Size), int64(t.Size)}
}

// Normalize resizes a frame to size x size (bilinear, stretched square, no
// aspect-ratio preservation), reorders BGR sources to RGB, and applies the
// per-channel standardization. Pure function; the frame is not modified.
func Normalize(f Frame, size int) (Tensor, error) {
	if err := f.validate(); err != nil {
		return Tensor{}, err
	}

	img := frameToNRGBA(f)
	img = imaging.Resize(img, size, size, imaging.Linear)

	plane := size * size
	data := make([]float32, 3*plane)
	idx := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			off := img.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				v := float32(img.Pix[off+c]) / 255.0
				data[c*plane+idx] = (v - channelMean[c]) / channelStd[c]
			}
			idx++
		}
	}
	return Tensor{Data: data, Size: size}, nil
}

// frameToNRGBA unpacks the raw frame into an NRGBA image in RGB channel
// order, replicating single-channel frames across all three planes.
func frameToNRGBA(f Frame) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			src := (y*f.Width + x) * f.Channels
			dst := img.PixOffset(x, y)
			var r, g, b byte
			if f.Channels == 1 {
				r, g, b = f.Pix[src], f.Pix[src], f.Pix[src]
			} else if f.Order == OrderBGR {
				r, g, b = f.Pix[src+2], f.Pix[src+1], f.Pix[src]
			} else {
				r, g, b = f.Pix[src], f.Pix[src+1], f.Pix[src+2]
			}
			img.Pix[dst] = r
			img.Pix[dst+1] = g
			img.Pix[dst+2] = b
			img.Pix[dst+3] = 0xff
		}
	}
	return img
}
