// Package onnx wraps the ONNX Runtime bindings used to serve the frozen model
// artifacts. The runtime environment is initialized once per process; sessions
// are treated as read-only after load and guarded by a lock because the
// underlying runtime does not guarantee concurrent inference on one session.
package onnx

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// Init initializes the ONNX Runtime environment from the given shared library
// path. Safe to call multiple times; only the first call has any effect.
func Init(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})

	return ortEnv.err
}

// Session wraps a DynamicAdvancedSession with the tensor names discovered
// from the model file.
type Session struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession

	InputNames  []string
	OutputNames []string
}

// Load opens the model at modelPath and creates an inference session bound to
// all of the model's declared inputs and outputs. The artifact file must
// exist; callers decide whether a missing file is fatal.
func Load(modelPath, libPath string) (*Session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("onnx: model artifact not found at %s: %w", modelPath, err)
	}

	if err := Init(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model %s declares no inputs or outputs", modelPath)
	}

	inputNames := make([]string, len(inputs))
	for i, inp := range inputs {
		inputNames[i] = inp.Name
	}

	outputNames := make([]string, len(outputs))
	for i, out := range outputs {
		outputNames[i] = out.Name
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(1)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &Session{
		session:     session,
		InputNames:  inputNames,
		OutputNames: outputNames,
	}, nil
}

// Run executes one inference call. The lock serializes concurrent requests
// over the single shared session.
func (s *Session) Run(inputs, outputs []ort.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.Run(inputs, outputs); err != nil {
		return fmt.Errorf("onnx: inference failed: %w", err)
	}

	return nil
}

// Close releases the session resources.
func (s *Session) Close() error {
	return s.session.Destroy()
}
