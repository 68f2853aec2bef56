package mesh

import (
	"testing"

	"github.com/fealab/fea/element"
	"github.com/fealab/fea/utils"
	"github.com/stretchr/testify/assert"
)

func TestUnitSquareTriMesh(t *testing.T) {
	n := 4
	m := NewUnitSquareTriMesh(n)
	assert.Equal(t, 2*n*n, m.NumElements())
	assert.Equal(t, (n+1)*(n+1), m.NumNodes())

	// All triangles counterclockwise, covering the square exactly
	var area float64
	for k := 0; k < m.NumElements(); k++ {
		e := m.Element(k)
		J := e.ReferenceJacobian(element.Tri3.ReferenceCenter())
		det := J.Det()
		assert.True(t, det > 0, "element %d has det %v", k, det)
		// Affine map: the element area is det J times the reference area
		area += det * element.Tri3.ReferenceMeasure()
	}
	assert.InDelta(t, 1., area, 1.e-12)
}

func TestUnitCubeTetMesh(t *testing.T) {
	n := 2
	m := NewUnitCubeTetMesh(n)
	assert.Equal(t, 6*n*n*n, m.NumElements())
	assert.Equal(t, (n+1)*(n+1)*(n+1), m.NumNodes())

	var vol float64
	for k := 0; k < m.NumElements(); k++ {
		e := m.Element(k)
		J := e.ReferenceJacobian(element.Tet4.ReferenceCenter())
		det := J.Det()
		assert.True(t, det > 0, "element %d has det %v", k, det)
		vol += det * element.Tet4.ReferenceMeasure()
	}
	assert.InDelta(t, 1., vol, 1.e-12)
}

func TestMeshElementsShareVertices(t *testing.T) {
	m := NewUnitSquareTriMesh(1)
	// Both triangles reference the shared diagonal vertices 0 and 3
	e0, e1 := m.Element(0), m.Element(1)
	assert.Equal(t, m.Vertex(0), e0.Node(0))
	assert.Equal(t, m.Vertex(0), e1.Node(0))
	assert.Equal(t, m.Vertex(3), e0.Node(2))
	assert.Equal(t, m.Vertex(3), e1.Node(1))
}

func TestClosestPointOverMesh(t *testing.T) {
	m := NewUnitSquareTriMesh(2)
	// A point outside the square is on the boundary of every element, and
	// the best projection over the mesh lands on the square's edge
	p := []float64{0.3, -0.5}
	bestDist := -1.
	var bestX []float64
	for k := 0; k < m.NumElements(); k++ {
		e := m.Element(k)
		cp := e.ClosestPoint(p)
		assert.Equal(t, element.OnBoundary, cp.Kind, "element %d", k)
		x := e.MapReferenceCoords(cp.RefCoords)
		var d2 float64
		for i := range x {
			d2 += (x[i] - p[i]) * (x[i] - p[i])
		}
		if bestDist < 0 || d2 < bestDist {
			bestDist, bestX = d2, x
		}
	}
	assert.InDelta(t, 0.3, bestX[0], 1.e-9)
	assert.InDelta(t, 0., bestX[1], 1.e-9)

	// An interior point is found inside some element
	p = []float64{0.3, 0.4}
	var found bool
	for k := 0; k < m.NumElements(); k++ {
		if cp := m.Element(k).ClosestPoint(p); cp.Kind == element.InElement {
			found = true
		}
	}
	assert.True(t, found)
}

func TestNewMeshValidation(t *testing.T) {
	assert.Panics(t, func() {
		NewMesh(element.Tri3, 2, []float64{0, 0, 1, 0}, []utils.Index{{0, 1, 2}})
	})
	assert.Panics(t, func() {
		NewMesh(element.Tri3, 2, []float64{0, 0, 1}, nil)
	})
}
