package vision

import (
	"errors"
	"math"
	"testing"
)

func uniformFrame(w, h int, r, g, b byte) Frame {
	pix := make([]byte, 0, w*h*3)
	for i := 0; i < w*h; i++ {
		pix = append(pix, r, g, b)
	}
	return Frame{Width: w, Height: h, Channels: 3, Order: OrderRGB, Pix: pix}
}

func TestNormalizeShape(t *testing.T) {
	const size = 224
	tensor, err := Normalize(uniformFrame(640, 480, 10, 20, 30), size)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got, want := len(tensor.Data), 3*size*size; got != want {
		t.Fatalf("tensor length = %d, want %d", got, want)
	}
	shape := tensor.Shape()
	for i, want := range []int64{1, 3, size, size} {
		if shape[i] != want {
			t.Errorf("shape[%d] = %d, want %d", i, shape[i], want)
		}
	}
}

func TestNormalizeValueRange(t *testing.T) {
	// For 8-bit input, channel c is bounded by (0-mean)/std and (1-mean)/std.
	tensor, err := Normalize(uniformFrame(32, 32, 0, 128, 255), 8)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	plane := 8 * 8
	for c := 0; c < 3; c++ {
		lo := (0.0 - channelMean[c]) / channelStd[c]
		hi := (1.0 - channelMean[c]) / channelStd[c]
		for i := c * plane; i < (c+1)*plane; i++ {
			if v := tensor.Data[i]; v < lo-1e-6 || v > hi+1e-6 {
				t.Fatalf("channel %d value %f outside [%f, %f]", c, v, lo, hi)
			}
		}
	}
}

func TestNormalizeStandardization(t *testing.T) {
	// A uniform frame survives resizing unchanged, so every plane must hold
	// exactly (v/255 - mean)/std for its channel.
	tensor, err := Normalize(uniformFrame(50, 50, 255, 0, 128), 4)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	plane := 4 * 4
	raw := [3]float32{255.0 / 255.0, 0.0, 128.0 / 255.0}
	for c := 0; c < 3; c++ {
		want := (raw[c] - channelMean[c]) / channelStd[c]
		got := tensor.Data[c*plane]
		if math.Abs(float64(got-want)) > 1e-4 {
			t.Errorf("channel %d = %f, want %f", c, got, want)
		}
	}
}

func TestNormalizeBGRReordering(t *testing.T) {
	// Same physical color delivered as RGB and as BGR must normalize to the
	// same tensor. Divergent handling here was exactly the bug the two
	// original capture paths had.
	rgb := uniformFrame(10, 10, 200, 100, 50)
	bgr := uniformFrame(10, 10, 50, 100, 200)
	bgr.Order = OrderBGR

	a, err := Normalize(rgb, 4)
	if err != nil {
		t.Fatalf("Normalize(rgb) failed: %v", err)
	}
	b, err := Normalize(bgr, 4)
	if err != nil {
		t.Fatalf("Normalize(bgr) failed: %v", err)
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("tensors diverge at %d: %f vs %f", i, a.Data[i], b.Data[i])
		}
	}
}

func TestNormalizeGrayscale(t *testing.T) {
	pix := make([]byte, 16*16)
	for i := range pix {
		pix[i] = 100
	}
	f := Frame{Width: 16, Height: 16, Channels: 1, Pix: pix}
	tensor, err := Normalize(f, 8)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	// Gray replicates across channels before standardization, so the three
	// planes differ only by the per-channel constants.
	plane := 8 * 8
	raw := float32(100) / 255.0
	for c := 0; c < 3; c++ {
		want := (raw - channelMean[c]) / channelStd[c]
		if got := tensor.Data[c*plane]; math.Abs(float64(got-want)) > 1e-4 {
			t.Errorf("channel %d = %f, want %f", c, got, want)
		}
	}
}

func TestNormalizeRejectsInvalidFrames(t *testing.T) {
	cases := []struct {
		name  string
		frame Frame
	}{
		{"empty", Frame{}},
		{"zero width", Frame{Width: 0, Height: 10, Channels: 3}},
		{"zero height", Frame{Width: 10, Height: 0, Channels: 3}},
		{"bad channels", Frame{Width: 2, Height: 2, Channels: 4, Pix: make([]byte, 16)}},
		{"short buffer", Frame{Width: 4, Height: 4, Channels: 3, Pix: make([]byte, 10)}},
	}
	for _, c := range cases {
		if _, err := Normalize(c.frame, 8); !errors.Is(err, ErrInvalidFrame) {
			t.Errorf("%s: got %v, want ErrInvalidFrame", c.name, err)
		}
	}
}
