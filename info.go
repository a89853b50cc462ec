package geodsp

import (
	vecmathcpu "github.com/cwbudde/algo-vecmath/cpu"
	"github.com/tphakala/simd/cpu"
)

// Info describes the vector capabilities the kernels run with.
type Info struct {
	// SIMDType describes the instruction set used for dot products,
	// sums and scaling.
	SIMDType string

	// Architecture is the GOARCH reported by the magnitude kernels.
	Architecture string

	// HasAVX2, HasSSE2 and HasNEON report the features available to the
	// magnitude kernels.
	HasAVX2 bool
	HasSSE2 bool
	HasNEON bool

	// GenericOnly is true when vector paths are disabled.
	GenericOnly bool

	// Workers is the goroutine count of the kernel set.
	Workers int
}

// Info returns the capabilities of k.
func (k *Kernels) Info() Info {
	features := vecmathcpu.DetectFeatures()

	return Info{
		SIMDType:     cpu.Info(),
		Architecture: features.Architecture,
		HasAVX2:      features.HasAVX2,
		HasSSE2:      features.HasSSE2,
		HasNEON:      features.HasNEON,
		GenericOnly:  features.ForceGeneric,
		Workers:      k.workers,
	}
}

// GetInfo returns the capabilities of the default kernels.
func GetInfo() Info {
	return defaultKernels().Info()
}
