package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

// Embedded quad shader source.
//
//go:embed shaders/redaction.wgsl
var quadShaderSource string

// ShaderSource returns the WGSL source of the quad shader.
func ShaderSource() string { return quadShaderSource }

// ValidateShader compiles the quad shader to SPIR-V with naga. The HAL
// compiles WGSL itself at pipeline creation; this lets tools and tests
// catch shader errors without a device.
func ValidateShader() ([]byte, error) {
	spirv, err := naga.Compile(quadShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile quad shader: %w", err)
	}
	return spirv, nil
}
