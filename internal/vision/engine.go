package vision

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrModelLoad is fatal: the model artifact is missing, unreadable, or
	// its declared shapes do not match the configured input size and label
	// vocabulary. Raised at construction, never during Classify.
	ErrModelLoad = errors.New("model load failed")

	// ErrInference is a per-call failure. The caller may retry with a new
	// frame; the engine stays usable.
	ErrInference = errors.New("inference failed")
)

// session is the behavior Engine needs from the underlying runtime. The
// production implementation wraps an ONNX session; tests substitute a fake.
type session interface {
	run(t Tensor) ([]float32, error)
	destroy() error
}

// Engine owns a single loaded model and executes forward passes. The
// underlying session is not assumed safe for concurrent runs, so Classify
// serializes callers with a mutex: at most one in-flight run per engine.
type Engine struct {
	mu         sync.Mutex
	sess       session
	inputSize  int
	numClasses int
}

// NewEngine loads the model at modelPath and validates its declared input
// shape [1,3,S,S] and output width against inputSize and numClasses.
func NewEngine(modelPath string, inputSize, numClasses int) (*Engine, error) {
	sess, err := newOnnxSession(modelPath, inputSize, numClasses)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, err)
	}
	log.Infof("[Engine] Model loaded from %s", modelPath)
	return newEngine(sess, inputSize, numClasses), nil
}

func newEngine(sess session, inputSize, numClasses int) *Engine {
	return &Engine{sess: sess, inputSize: inputSize, numClasses: numClasses}
}

// InputSize returns the configured model input edge length S.
func (e *Engine) InputSize() int { return e.inputSize }

// NumClasses returns the model's output width N.
func (e *Engine) NumClasses() int { return e.numClasses }

// Classify runs one forward pass and returns the raw per-class scores. The
// call blocks until scores are produced or fails with ErrInference.
func (e *Engine) Classify(t Tensor) ([]float32, error) {
	if want := 3 * e.inputSize * e.inputSize; len(t.Data) != want {
		return nil, fmt.Errorf("%w: tensor length %d, model expects %d",
			ErrInference, len(t.Data), want)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return nil, fmt.Errorf("%w: engine is closed", ErrInference)
	}
	scores, err := e.sess.run(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInference, err)
	}
	if len(scores) != e.numClasses {
		return nil, fmt.Errorf("%w: model produced %d scores, expected %d",
			ErrInference, len(scores), e.numClasses)
	}
	return scores, nil
}

// Close releases the underlying session. The engine must not be used after.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return nil
	}
	err := e.sess.destroy()
	e.sess = nil
	return err
}
