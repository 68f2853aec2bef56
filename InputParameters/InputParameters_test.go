package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	data := []byte(`
Title: Plane strain patch
Operator: LinearElasticity
MeshType: UnitSquareTri
MeshResolution: 8
QuadratureStrength: 2
ParallelDegree: 4
Materials:
  YoungsModulus: 200.e9
  PoissonRatio: 0.3
PointCloudFile: cloud.bin
`)
	var ap AssemblyParameters
	assert.NoError(t, ap.Parse(data))
	assert.Equal(t, "LinearElasticity", ap.Operator)
	assert.Equal(t, 8, ap.MeshResolution)
	assert.Equal(t, 4, ap.ParallelDegree)
	assert.InDelta(t, 0.3, ap.Material("PoissonRatio", 0.), 1.e-15)
	assert.InDelta(t, 200.e9, ap.Material("YoungsModulus", 0.), 1.e-3)
	// Unset constants fall back to the default
	assert.InDelta(t, 1., ap.Material("ShearModulus", 1.), 1.e-15)
	assert.Equal(t, "cloud.bin", ap.PointCloudFile)

	// Defaults applied for omitted fields
	var minimal AssemblyParameters
	assert.NoError(t, minimal.Parse([]byte("Title: minimal\n")))
	assert.Equal(t, 2, minimal.QuadratureStrength)
	assert.Equal(t, 1, minimal.MeshResolution)

	// Malformed YAML is an error
	assert.Error(t, new(AssemblyParameters).Parse([]byte("Title: [unclosed")))
}
