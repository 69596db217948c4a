package vision

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// fakeSession lets engine logic be exercised without the ONNX runtime.
type fakeSession struct {
	mu        sync.Mutex
	scores    []float32
	err       error
	calls     int
	inFlight  int
	maxFlight int
	destroyed bool
}

func (f *fakeSession) run(t Tensor) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}

func (f *fakeSession) destroy() error {
	f.destroyed = true
	return nil
}

func testTensor(size int) Tensor {
	return Tensor{Data: make([]float32, 3*size*size), Size: size}
}

func TestClassifyReturnsScores(t *testing.T) {
	sess := &fakeSession{scores: []float32{1, 2, 3, 4, 5, 6}}
	e := newEngine(sess, 224, 6)

	scores, err := e.Classify(testTensor(224))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(scores) != 6 {
		t.Fatalf("got %d scores, want 6", len(scores))
	}
}

func TestClassifyRejectsWrongTensorShape(t *testing.T) {
	sess := &fakeSession{scores: []float32{1, 2, 3, 4, 5, 6}}
	e := newEngine(sess, 224, 6)

	if _, err := e.Classify(testTensor(112)); !errors.Is(err, ErrInference) {
		t.Errorf("got %v, want ErrInference", err)
	}
	if sess.calls != 0 {
		t.Errorf("session was invoked %d times for a bad tensor", sess.calls)
	}
}

func TestClassifyWrapsRunFailure(t *testing.T) {
	sess := &fakeSession{err: fmt.Errorf("runtime blew up")}
	e := newEngine(sess, 8, 6)

	_, err := e.Classify(testTensor(8))
	if !errors.Is(err, ErrInference) {
		t.Fatalf("got %v, want ErrInference", err)
	}

	// The engine stays usable after a per-call failure.
	sess.err = nil
	sess.scores = []float32{1, 2, 3, 4, 5, 6}
	if _, err := e.Classify(testTensor(8)); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestClassifyRejectsUnexpectedScoreWidth(t *testing.T) {
	sess := &fakeSession{scores: []float32{1, 2, 3, 4, 5}}
	e := newEngine(sess, 8, 6)

	if _, err := e.Classify(testTensor(8)); !errors.Is(err, ErrInference) {
		t.Errorf("got %v, want ErrInference", err)
	}
}

func TestClassifySerializesCallers(t *testing.T) {
	sess := &fakeSession{scores: []float32{1, 2, 3, 4, 5, 6}}
	e := newEngine(sess, 8, 6)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Classify(testTensor(8))
		}()
	}
	wg.Wait()

	if sess.maxFlight > 1 {
		t.Errorf("observed %d concurrent runs, engine must serialize", sess.maxFlight)
	}
	if sess.calls != 16 {
		t.Errorf("calls = %d, want 16", sess.calls)
	}
}

func TestCloseReleasesSession(t *testing.T) {
	sess := &fakeSession{scores: []float32{1}}
	e := newEngine(sess, 8, 1)

	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !sess.destroyed {
		t.Error("session not destroyed")
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := e.Classify(testTensor(8)); !errors.Is(err, ErrInference) {
		t.Errorf("Classify after Close: got %v, want ErrInference", err)
	}
}

func TestModelShapeChecks(t *testing.T) {
	if err := checkInputShape([]int64{1, 3, 224, 224}, 224); err != nil {
		t.Errorf("exact shape rejected: %v", err)
	}
	if err := checkInputShape([]int64{-1, 3, -1, -1}, 224); err != nil {
		t.Errorf("dynamic shape rejected: %v", err)
	}
	if err := checkInputShape([]int64{1, 3, 299, 299}, 224); err == nil {
		t.Error("mismatched edge accepted")
	}
	if err := checkInputShape([]int64{1, 1, 224, 224}, 224); err == nil {
		t.Error("single-channel model accepted")
	}
	if err := checkInputShape([]int64{3, 224, 224}, 224); err == nil {
		t.Error("3D input accepted")
	}

	if err := checkOutputShape([]int64{1, 6}, 6); err != nil {
		t.Errorf("matching output rejected: %v", err)
	}
	if err := checkOutputShape([]int64{1, 5}, 6); err == nil {
		t.Error("output width 5 accepted for 6 labels")
	}
	if err := checkOutputShape([]int64{-1, -1}, 6); err != nil {
		t.Errorf("dynamic output rejected: %v", err)
	}
}

func TestNewEngineMissingModel(t *testing.T) {
	if _, err := NewEngine("/nonexistent/model.onnx", 224, 6); !errors.Is(err, ErrModelLoad) {
		t.Errorf("got %v, want ErrModelLoad", err)
	}
}

func TestClassifierPipeline(t *testing.T) {
	sess := &fakeSession{scores: []float32{0.1, 0.2, 0.3, 0.4, 9.0, 0.5}}
	c := newClassifier(newEngine(sess, 16, 6), garbageLabels)

	res, err := c.ClassifyFrame(uniformFrame(64, 64, 30, 60, 90))
	if err != nil {
		t.Fatalf("ClassifyFrame failed: %v", err)
	}
	if res.Label != "plastic" {
		t.Errorf("got %q, want plastic", res.Label)
	}
	if res.Confidence <= 90 {
		t.Errorf("confidence = %f, want > 90", res.Confidence)
	}
}

func TestClassifierRejectsBadFrame(t *testing.T) {
	sess := &fakeSession{scores: []float32{1, 2, 3, 4, 5, 6}}
	c := newClassifier(newEngine(sess, 16, 6), garbageLabels)

	if _, err := c.ClassifyFrame(Frame{}); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("got %v, want ErrInvalidFrame", err)
	}
	if sess.calls != 0 {
		t.Errorf("engine invoked for an invalid frame")
	}
}
