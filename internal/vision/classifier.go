package vision

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	log "github.com/sirupsen/logrus"
)

// Classifier is the one shared classification pipeline: normalize a frame,
// run the engine, decode the scores. Every entry point (capture loop,
// one-shot CLI, HTTP upload) goes through the same instance, so channel
// ordering and normalization cannot diverge between call sites.
type Classifier struct {
	engine *Engine
	labels []string
}

// NewClassifier loads the label vocabulary and the model. A vocabulary that
// does not match the model's output width fails here, at startup.
func NewClassifier(modelPath, labelsPath string, inputSize int) (*Classifier, error) {
	labels, err := LoadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: labels: %s", ErrModelLoad, err)
	}
	engine, err := NewEngine(modelPath, inputSize, len(labels))
	if err != nil {
		return nil, err
	}
	log.Infof("[Classifier] Ready with %d labels, input size %d", len(labels), inputSize)
	return newClassifier(engine, labels), nil
}

func newClassifier(engine *Engine, labels []string) *Classifier {
	return &Classifier{engine: engine, labels: labels}
}

// Labels returns the vocabulary in model output order.
func (c *Classifier) Labels() []string { return c.labels }

// ClassifyFrame runs the full pipeline on one frame.
func (c *Classifier) ClassifyFrame(f Frame) (Result, error) {
	tensor, err := Normalize(f, c.engine.InputSize())
	if err != nil {
		return Result{}, err
	}
	scores, err := c.engine.Classify(tensor)
	if err != nil {
		return Result{}, err
	}
	return Decode(scores, c.labels)
}

// ClassifyFile decodes an image file and classifies it.
func (c *Classifier) ClassifyFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidFrame, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Result{}, fmt.Errorf("%w: decode %s: %s", ErrInvalidFrame, path, err)
	}
	return c.ClassifyFrame(FrameFromImage(img))
}

// Close releases the engine.
func (c *Classifier) Close() error { return c.engine.Close() }
