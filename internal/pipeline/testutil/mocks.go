// Package testutil provides mock stages, fixtures, and assertion helpers
// for exercising the pipeline controller without real numerical code.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/ssmith-git/jwst/internal/datamodel"
)

// MockAnalyzer is a configurable Analyzer that records its calls.
type MockAnalyzer struct {
	// AnalyzeFunc overrides the default behavior when set.
	AnalyzeFunc func(ctx context.Context, expName string) (*datamodel.AmiResult, error)
	// FailOn makes analysis fail for specific exposure names.
	FailOn map[string]error

	mu    sync.Mutex
	calls []string
}

// Analyze records the call and returns a small deterministic result.
func (m *MockAnalyzer) Analyze(ctx context.Context, expName string) (*datamodel.AmiResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, expName)
	m.mu.Unlock()

	if err, ok := m.FailOn[expName]; ok {
		return nil, err
	}
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, expName)
	}
	return &datamodel.AmiResult{
		Name:             expName,
		ClosurePhases:    []float64{0.1, 0.2},
		FringeAmplitudes: []float64{1.0, 0.5},
	}, nil
}

// Calls returns the exposure names analyzed so far.
func (m *MockAnalyzer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockAverager records each Average invocation's input list.
type MockAverager struct {
	Err error

	mu    sync.Mutex
	calls [][]datamodel.ArtifactRef
}

// Average records the ordered input refs.
func (m *MockAverager) Average(ctx context.Context, refs []datamodel.ArtifactRef) (*datamodel.AmiResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]datamodel.ArtifactRef(nil), refs...))
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return &datamodel.AmiResult{
		ClosurePhases:    []float64{0.15},
		FringeAmplitudes: []float64{0.75},
	}, nil
}

// Calls returns the recorded input lists in invocation order.
func (m *MockAverager) Calls() [][]datamodel.ArtifactRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]datamodel.ArtifactRef(nil), m.calls...)
}

// NormalizeCall records one Normalize invocation.
type NormalizeCall struct {
	Science   *datamodel.AmiResult
	Reference *datamodel.AmiResult
}

// MockNormalizer records its invocations.
type MockNormalizer struct {
	Err error

	mu    sync.Mutex
	calls []NormalizeCall
}

// Normalize records the call.
func (m *MockNormalizer) Normalize(ctx context.Context, science, reference *datamodel.AmiResult) (*datamodel.AmiResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, NormalizeCall{Science: science, Reference: reference})
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return &datamodel.AmiResult{
		ClosurePhases:    []float64{0.05},
		FringeAmplitudes: []float64{1.5},
	}, nil
}

// Calls returns the recorded invocations.
func (m *MockNormalizer) Calls() []NormalizeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NormalizeCall(nil), m.calls...)
}

// BlendCall records one Blend invocation.
type BlendCall struct {
	TargetName string
	Inputs     []datamodel.BlendInput
}

// MockBlender records its invocations and forwards the input lineage to
// the target like the real blender does.
type MockBlender struct {
	Err error

	mu    sync.Mutex
	calls []BlendCall
}

// Blend records the call and writes input names onto the target.
func (m *MockBlender) Blend(target *datamodel.AmiResult, inputs []datamodel.BlendInput) error {
	m.mu.Lock()
	m.calls = append(m.calls, BlendCall{
		TargetName: target.Name,
		Inputs:     append([]datamodel.BlendInput(nil), inputs...),
	})
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	names := make([]string, len(inputs))
	for i, in := range inputs {
		if in.Result != nil {
			names[i] = in.Result.Name
		} else {
			names[i] = in.Ref.Base()
		}
	}
	target.Meta.Inputs = names
	return nil
}

// Calls returns the recorded invocations.
func (m *MockBlender) Calls() []BlendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BlendCall(nil), m.calls...)
}

// SaveCall records one Save invocation.
type SaveCall struct {
	Result   *datamodel.AmiResult
	BaseName string
	Suffix   string
	AsnID    string
	Ref      datamodel.ArtifactRef
}

// MockPersister records saves and hands out synthetic artifact refs.
type MockPersister struct {
	// FailOnSuffix makes saves with a given suffix fail.
	FailOnSuffix map[string]error

	mu    sync.Mutex
	calls []SaveCall
}

// Save records the call and returns <base>_<suffix>.json as the ref.
func (m *MockPersister) Save(result *datamodel.AmiResult, baseName, suffix, asnID string) (datamodel.ArtifactRef, error) {
	if err, ok := m.FailOnSuffix[suffix]; ok {
		return "", err
	}

	ref := datamodel.ArtifactRef(fmt.Sprintf("%s_%s.json", baseName, suffix))
	m.mu.Lock()
	m.calls = append(m.calls, SaveCall{
		Result:   result,
		BaseName: baseName,
		Suffix:   suffix,
		AsnID:    asnID,
		Ref:      ref,
	})
	m.mu.Unlock()
	return ref, nil
}

// Calls returns the recorded saves in invocation order.
func (m *MockPersister) Calls() []SaveCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SaveCall(nil), m.calls...)
}

// CallsWithSuffix filters recorded saves by suffix.
func (m *MockPersister) CallsWithSuffix(suffix string) []SaveCall {
	var out []SaveCall
	for _, call := range m.Calls() {
		if call.Suffix == suffix {
			out = append(out, call)
		}
	}
	return out
}
