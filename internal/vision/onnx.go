package vision

import (
	"fmt"
	"os"

	onnxrt "github.com/yalue/onnxruntime_go"
)

// onnxSession wraps a DynamicAdvancedSession. Per-call tensors are created
// and destroyed inside run so repeated calls cannot leak native memory,
// including on failure paths.
type onnxSession struct {
	sess       *onnxrt.DynamicAdvancedSession
	inputName  string
	outputName string
}

func newOnnxSession(modelPath string, inputSize, numClasses int) (*onnxSession, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("empty model path")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, err
	}
	if !onnxrt.IsInitialized() {
		if err := onnxrt.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnx runtime: %s", err)
		}
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model io info: %s", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("expected 1 input and 1 output, model has %d/%d",
			len(inputs), len(outputs))
	}

	in, out := inputs[0], outputs[0]
	if err := checkInputShape(in.Dimensions, inputSize); err != nil {
		return nil, err
	}
	if err := checkOutputShape(out.Dimensions, numClasses); err != nil {
		return nil, err
	}

	sess, err := onnxrt.NewDynamicAdvancedSession(modelPath,
		[]string{in.Name}, []string{out.Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("create session: %s", err)
	}
	return &onnxSession{sess: sess, inputName: in.Name, outputName: out.Name}, nil
}

// checkInputShape validates a declared NCHW input against the configured
// edge length. Dynamic dimensions (<= 0) are accepted.
func checkInputShape(dims onnxrt.Shape, size int) error {
	if len(dims) != 4 {
		return fmt.Errorf("expected 4D input, model declares %dD", len(dims))
	}
	if dims[1] > 0 && dims[1] != 3 {
		return fmt.Errorf("expected 3 input channels, model declares %d", dims[1])
	}
	for _, d := range dims[2:] {
		if d > 0 && d != int64(size) {
			return fmt.Errorf("model input edge %d does not match configured size %d", d, size)
		}
	}
	return nil
}

// checkOutputShape validates the declared output width against the label
// vocabulary size. A mismatch here is a configuration fault and must fail
// at load time, not inside a classify call.
func checkOutputShape(dims onnxrt.Shape, numClasses int) error {
	if len(dims) == 0 {
		return fmt.Errorf("model declares no output dimensions")
	}
	width := dims[len(dims)-1]
	if width > 0 && width != int64(numClasses) {
		return fmt.Errorf("model output width %d does not match %d labels", width, numClasses)
	}
	return nil
}

func (s *onnxSession) run(t Tensor) ([]float32, error) {
	input, err := onnxrt.NewTensor(onnxrt.NewShape(t.Shape()...), t.Data)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %s", err)
	}
	defer func() { _ = input.Destroy() }()

	outputs := []onnxrt.Value{nil}
	if err := s.sess.Run([]onnxrt.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("session run: %s", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				_ = o.Destroy()
			}
		}
	}()

	out, ok := outputs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	scores := make([]float32, len(out.GetData()))
	copy(scores, out.GetData())
	return scores, nil
}

func (s *onnxSession) destroy() error {
	if s.sess == nil {
		return nil
	}
	err := s.sess.Destroy()
	s.sess = nil
	return err
}
