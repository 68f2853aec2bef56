// Package mesh holds unstructured meshes as a shared vertex arena plus
// element to vertex connectivity, and builds the structured meshes used in
// tests and examples.
package mesh

import (
	"fmt"

	"github.com/fealab/fea/element"
	"github.com/fealab/fea/utils"
)

// Mesh is a homogeneous collection of elements of one shape over a shared
// vertex buffer. Vertices are interleaved physical coordinates, GeomDim per
// vertex, and EToV maps each element to its vertices in the shape's
// reference node ordering.
type Mesh struct {
	Shape    element.Shape
	GeomDim  int
	Vertices []float64
	EToV     []utils.Index
}

func NewMesh(s element.Shape, geomDim int, vertices []float64, etov []utils.Index) (m *Mesh) {
	if len(vertices)%geomDim != 0 {
		panic(fmt.Errorf("vertex buffer length %d is not a multiple of the geometric dimension %d",
			len(vertices), geomDim))
	}
	m = &Mesh{
		Shape:    s,
		GeomDim:  geomDim,
		Vertices: vertices,
		EToV:     etov,
	}
	// Element construction validates node counts and ranges
	for k := range etov {
		_ = m.Element(k)
	}
	return
}

// NumElements returns the element count K
func (m *Mesh) NumElements() int { return len(m.EToV) }

// NumNodes returns the vertex count of the shared arena
func (m *Mesh) NumNodes() int { return len(m.Vertices) / m.GeomDim }

// Element materializes element k over the shared arena without copying
// coordinates
func (m *Mesh) Element(k int) element.Element {
	return element.NewElement(m.Shape, m.GeomDim, m.Vertices, m.EToV[k])
}

// Vertex returns the coordinates of vertex i
func (m *Mesh) Vertex(i int) []float64 {
	return m.Vertices[i*m.GeomDim : (i+1)*m.GeomDim]
}

// NewUnitSquareTriMesh triangulates the unit square [0,1]^2 with n x n cells
// split into two counterclockwise triangles each, (n+1)^2 vertices and 2 n^2
// elements
func NewUnitSquareTriMesh(n int) *Mesh {
	if n < 1 {
		panic(fmt.Errorf("mesh resolution must be positive, got %d", n))
	}
	var (
		np    = n + 1
		verts = make([]float64, 0, 2*np*np)
		etov  = make([]utils.Index, 0, 2*n*n)
		h     = 1. / float64(n)
	)
	for j := 0; j < np; j++ {
		for i := 0; i < np; i++ {
			verts = append(verts, float64(i)*h, float64(j)*h)
		}
	}
	vid := func(i, j int) int { return j*np + i }
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			var (
				v00 = vid(i, j)
				v10 = vid(i+1, j)
				v01 = vid(i, j+1)
				v11 = vid(i+1, j+1)
			)
			// Split along the diagonal v00-v11, both triangles CCW
			etov = append(etov,
				utils.Index{v00, v10, v11},
				utils.Index{v00, v11, v01},
			)
		}
	}
	return NewMesh(element.Tri3, 2, verts, etov)
}

// NewUnitCubeTetMesh splits the unit cube [0,1]^3 into n^3 cells of six
// positively oriented tetrahedra each, the standard Kuhn subdivision
func NewUnitCubeTetMesh(n int) *Mesh {
	if n < 1 {
		panic(fmt.Errorf("mesh resolution must be positive, got %d", n))
	}
	var (
		np    = n + 1
		verts = make([]float64, 0, 3*np*np*np)
		etov  = make([]utils.Index, 0, 6*n*n*n)
		h     = 1. / float64(n)
	)
	for k := 0; k < np; k++ {
		for j := 0; j < np; j++ {
			for i := 0; i < np; i++ {
				verts = append(verts, float64(i)*h, float64(j)*h, float64(k)*h)
			}
		}
	}
	vid := func(i, j, k int) int { return (k*np+j)*np + i }
	// Each tet walks from corner (0,0,0) to (1,1,1) of the cell along one of
	// the six axis orderings. Odd permutations get their last two vertices
	// swapped so every tet comes out positively oriented.
	paths := [6][3]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	odd := [6]bool{false, true, true, false, false, true}
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				for pi, path := range paths {
					var (
						c    = [3]int{i, j, k}
						tet  = make(utils.Index, 0, 4)
						perm [4][3]int
					)
					perm[0] = c
					for step := 0; step < 3; step++ {
						c[path[step]]++
						perm[step+1] = c
					}
					for _, v := range perm {
						tet = append(tet, vid(v[0], v[1], v[2]))
					}
					if odd[pi] {
						tet[2], tet[3] = tet[3], tet[2]
					}
					etov = append(etov, tet)
				}
			}
		}
	}
	return NewMesh(element.Tet4, 3, verts, etov)
}
