package vision

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrDecode indicates a score/label width mismatch. It means the label
// vocabulary does not belong to the loaded model, so callers should treat it
// as a configuration fault, not retry.
var ErrDecode = errors.New("decode failed")

// Score is one label's share of the softmax distribution.
type Score struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Result is the decoded verdict of one inference call. Immutable; Scores
// holds the full distribution in vocabulary order and sums to 1.
type Result struct {
	Label       string  `json:"label"`
	Index       int     `json:"index"`
	Probability float64 `json:"probability"`
	Confidence  float64 `json:"confidence"` // Probability as a percentage
	Scores      []Score `json:"scores"`
}

// Decode converts raw per-class scores into a labeled result using a
// numerically stable softmax. Ties on the maximum break toward the lowest
// index so results are reproducible.
func Decode(scores []float32, labels []string) (Result, error) {
	if len(scores) != len(labels) {
		return Result{}, fmt.Errorf("%w: %d scores for %d labels", ErrDecode, len(scores), len(labels))
	}
	if len(scores) == 0 {
		return Result{}, fmt.Errorf("%w: empty score vector", ErrDecode)
	}

	// Subtract the max before exponentiating so large logits cannot overflow.
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(float64(s - maxScore))
		sum += probs[i]
	}

	best := 0
	out := make([]Score, len(scores))
	for i := range probs {
		probs[i] /= sum
		out[i] = Score{Label: labels[i], Probability: probs[i]}
		if probs[i] > probs[best] {
			best = i
		}
	}

	return Result{
		Label:       labels[best],
		Index:       best,
		Probability: probs[best],
		Confidence:  probs[best] * 100.0,
		Scores:      out,
	}, nil
}

// LoadLabels reads the label vocabulary, one class name per line, skipping
// blank lines. The order must match the model's output width.
func LoadLabels(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var labels []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels in %s", path)
	}
	return labels, nil
}
