package testutil

import (
	"testing"

	"github.com/ssmith-git/jwst/internal/datamodel"
	"github.com/ssmith-git/jwst/internal/pipeline"
)

// AssertOutcomeStatus verifies a run ended with the expected status.
func AssertOutcomeStatus(t *testing.T, outcome *pipeline.Outcome, want pipeline.RunStatus) {
	t.Helper()
	if outcome == nil {
		t.Fatal("outcome is nil")
	}
	if outcome.Status != want {
		t.Errorf("outcome status = %v, want %v (phase %v)", outcome.Status, want, outcome.Phase)
	}
}

// AssertNoStageCalls verifies no collaborator was invoked.
func AssertNoStageCalls(t *testing.T, mocks *MockSet) {
	t.Helper()
	if n := len(mocks.Analyzer.Calls()); n != 0 {
		t.Errorf("analyzer called %d times, want 0", n)
	}
	if n := len(mocks.Averager.Calls()); n != 0 {
		t.Errorf("averager called %d times, want 0", n)
	}
	if n := len(mocks.Normalizer.Calls()); n != 0 {
		t.Errorf("normalizer called %d times, want 0", n)
	}
	if n := len(mocks.Blender.Calls()); n != 0 {
		t.Errorf("blender called %d times, want 0", n)
	}
	if n := len(mocks.Persister.Calls()); n != 0 {
		t.Errorf("persister called %d times, want 0", n)
	}
}

// AssertRefs verifies an artifact list matches, in order.
func AssertRefs(t *testing.T, got []datamodel.ArtifactRef, want ...datamodel.ArtifactRef) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("artifact refs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("artifact ref[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// AssertRunErrorKind verifies err is a RunError of the given kind.
func AssertRunErrorKind(t *testing.T, err error, want pipeline.Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := pipeline.KindOf(err); got != want {
		t.Errorf("error kind = %v, want %v (error: %v)", got, want, err)
	}
}
