// Package capture supplies raw frames to the classification pipeline and
// hides where they come from: a fixed set of image files or a watched
// drop directory standing in for a live device.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"campuscycle/internal/vision"
)

// ErrFrameTimeout is returned when no frame arrives within the configured
// acquisition window. An unresponsive device must not hang the caller.
var ErrFrameTimeout = errors.New("frame acquisition timed out")

// Source produces frames one at a time. Next blocks until a frame is
// available, the context is cancelled, or the source's acquisition timeout
// elapses. Sources return io.EOF when exhausted.
type Source interface {
	Next(ctx context.Context) (vision.Frame, error)
	Close() error
}

// FileSource walks a fixed list of image files.
type FileSource struct {
	paths []string
	pos   int
}

func NewFileSource(paths ...string) *FileSource {
	return &FileSource{paths: paths}
}

func (s *FileSource) Next(ctx context.Context) (vision.Frame, error) {
	if err := ctx.Err(); err != nil {
		return vision.Frame{}, err
	}
	if s.pos >= len(s.paths) {
		return vision.Frame{}, io.EOF
	}
	path := s.paths[s.pos]
	s.pos++
	return loadFrame(path)
}

func (s *FileSource) Close() error { return nil }

func loadFrame(path string) (vision.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return vision.Frame{}, fmt.Errorf("%w: %s", vision.ErrInvalidFrame, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return vision.Frame{}, fmt.Errorf("%w: decode %s: %s", vision.ErrInvalidFrame, path, err)
	}
	return vision.FrameFromImage(img), nil
}
