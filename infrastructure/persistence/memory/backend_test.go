package memory_test

import (
	"testing"

	"cartograph/application/ports"
	"cartograph/infrastructure/persistence/memory"
	"cartograph/tests/conformance"
)

func TestBackendConformance(t *testing.T) {
	conformance.Run(t, func(t *testing.T) ports.Backend {
		return memory.New(nil)
	})
}
