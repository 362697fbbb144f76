//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL shader sources.

//go:embed shaders/life.wgsl
var lifeShaderSource string

//go:embed shaders/quad.wgsl
var quadShaderSource string

//go:embed shaders/overlay.wgsl
var overlayShaderSource string

// ShaderFormat selects what is handed to the HAL when creating shader modules.
type ShaderFormat int

const (
	// ShaderWGSL passes WGSL source; the backend translates it.
	ShaderWGSL ShaderFormat = iota

	// ShaderSPIRV compiles WGSL to SPIR-V with naga before module creation.
	ShaderSPIRV
)

// String returns the format name.
func (f ShaderFormat) String() string {
	if f == ShaderSPIRV {
		return "spirv"
	}
	return "wgsl"
}

// CompileShaderToSPIRV compiles WGSL source to SPIR-V words.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirv, nil
}

// createShaderModule creates a module from WGSL source in the given format.
func createShaderModule(device hal.Device, label, wgsl string, format ShaderFormat) (hal.ShaderModule, error) {
	source := hal.ShaderSource{WGSL: wgsl}
	if format == ShaderSPIRV {
		spirv, err := CompileShaderToSPIRV(wgsl)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		source = hal.ShaderSource{SPIRV: spirv}
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", label, err)
	}
	slogger().Debug("gpu: shader module created", "label", label, "format", format)
	return module, nil
}
