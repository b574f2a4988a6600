package memory

import (
	"testing"

	"github.com/code-payments/vault-driver/pkg/vault/data/run/tests"
)

func TestRunMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}
