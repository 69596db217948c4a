package capture

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"campuscycle/internal/vision"
)

// WatchSource acquires frames from a drop directory: every image file that
// lands in it becomes the next frame. Next blocks up to the acquisition
// timeout and then fails with ErrFrameTimeout instead of waiting forever.
type WatchSource struct {
	watcher *fsnotify.Watcher
	timeout time.Duration
	dir     string
}

// NewWatchSource starts watching dir. A timeout of zero means wait
// indefinitely; callers are expected to pass a bound.
func NewWatchSource(dir string, timeout time.Duration) (*WatchSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Infof("[Capture] Watching %s for frames", dir)
	return &WatchSource{watcher: watcher, timeout: timeout, dir: dir}, nil
}

func (s *WatchSource) Next(ctx context.Context) (vision.Frame, error) {
	var deadline <-chan time.Time
	if s.timeout > 0 {
		timer := time.NewTimer(s.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return vision.Frame{}, ctx.Err()
		case <-deadline:
			return vision.Frame{}, fmt.Errorf("%w: no frame within %s", ErrFrameTimeout, s.timeout)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return vision.Frame{}, fmt.Errorf("%w: watcher closed", ErrFrameTimeout)
			}
			log.Warnf("[Capture] Watcher error: %v", err)
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return vision.Frame{}, fmt.Errorf("%w: watcher closed", ErrFrameTimeout)
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !isImagePath(ev.Name) {
				continue
			}
			// Writers may still be flushing when the event fires.
			time.Sleep(50 * time.Millisecond)
			frame, err := loadFrame(ev.Name)
			if err != nil {
				log.Warnf("[Capture] Skipping %s: %v", ev.Name, err)
				continue
			}
			return frame, nil
		}
	}
}

func (s *WatchSource) Close() error { return s.watcher.Close() }

func isImagePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}
