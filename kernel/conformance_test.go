package kernel_test

import (
	"testing"

	"github.com/openmagnetics/corecad/kernel"
	"github.com/openmagnetics/corecad/kernel/kerneltest"
)

func TestAnalyticConformance(t *testing.T) {
	kerneltest.TestBackend(t, func() kernel.Backend {
		return kernel.Get(kernel.BackendAnalytic)
	})
}
