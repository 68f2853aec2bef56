// Package element implements reference finite elements: per-shape Lagrange
// basis evaluation, the isoparametric map to physical coordinates with its
// Jacobian, and closest point projection of physical points onto elements.
//
// Reference domains follow the usual [-1,1]^d convention: the triangle has
// vertices (-1,-1),(1,-1),(-1,1), the tetrahedron (-1,-1,-1),(1,-1,-1),
// (-1,1,-1),(-1,-1,1), and segments, quadrilaterals and hexahedra are the
// bi-unit box.
package element

import (
	"github.com/fealab/fea/utils"
)

// Shape tags the supported reference element types
type Shape int

const (
	Unknown Shape = iota
	// 1D elements
	Line2
	// 2D elements
	Tri3
	Tri6
	Quad4
	Quad9
	// 3D elements
	Tet4
	Tet10
	Tet20
	Hex8
	Hex20
	Hex27
)

func (s Shape) String() string {
	names := []string{
		"Unknown",
		"Line2",
		"Tri3", "Tri6", "Quad4", "Quad9",
		"Tet4", "Tet10", "Tet20", "Hex8", "Hex20", "Hex27",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Invalid"
}

// Dim returns the reference domain dimension
func (s Shape) Dim() int {
	switch s {
	case Line2:
		return 1
	case Tri3, Tri6, Quad4, Quad9:
		return 2
	case Tet4, Tet10, Tet20, Hex8, Hex20, Hex27:
		return 3
	}
	return 0
}

// NumNodes returns the number of basis functions / nodes
func (s Shape) NumNodes() int {
	switch s {
	case Line2:
		return 2
	case Tri3:
		return 3
	case Tri6:
		return 6
	case Quad4:
		return 4
	case Quad9:
		return 9
	case Tet4:
		return 4
	case Tet10:
		return 10
	case Tet20:
		return 20
	case Hex8:
		return 8
	case Hex20:
		return 20
	case Hex27:
		return 27
	}
	return 0
}

// Degree returns the polynomial degree of the basis
func (s Shape) Degree() int {
	switch s {
	case Line2, Tri3, Quad4, Tet4, Hex8:
		return 1
	case Tri6, Quad9, Tet10, Hex20, Hex27:
		return 2
	case Tet20:
		return 3
	}
	return 0
}

// ReferenceMeasure returns the length/area/volume of the reference domain,
// which quadrature weights for the shape must sum to
func (s Shape) ReferenceMeasure() float64 {
	switch s {
	case Line2:
		return 2
	case Tri3, Tri6:
		return 2
	case Quad4, Quad9:
		return 4
	case Tet4, Tet10, Tet20:
		return 4. / 3.
	case Hex8, Hex20, Hex27:
		return 8
	}
	return 0
}

// simplex reports whether the reference domain is a simplex rather than a box
func (s Shape) simplex() bool {
	switch s {
	case Tri3, Tri6, Tet4, Tet10, Tet20:
		return true
	}
	return false
}

// ReferenceNodes returns the n x r matrix of node coordinates in the
// reference domain, ordered consistently with Basis and BasisGradients
func (s Shape) ReferenceNodes() utils.Matrix {
	var (
		n, r = s.NumNodes(), s.Dim()
	)
	data := make([]float64, 0, n*r)
	for _, node := range refNodeTable(s) {
		data = append(data, node...)
	}
	return utils.NewMatrix(n, r, data)
}

// ReferenceCenter returns the centroid of the reference domain, used as the
// starting point for closest point iterations
func (s Shape) ReferenceCenter() []float64 {
	switch s.Dim() {
	case 1:
		return []float64{0}
	case 2:
		if s.simplex() {
			return []float64{-1. / 3., -1. / 3.}
		}
		return []float64{0, 0}
	case 3:
		if s.simplex() {
			return []float64{-0.5, -0.5, -0.5}
		}
		return []float64{0, 0, 0}
	}
	return nil
}

// InReferenceDomain reports whether ref lies inside the reference domain of
// the shape, within tol
func (s Shape) InReferenceDomain(ref []float64, tol float64) bool {
	var sum float64
	for _, x := range ref {
		if x < -1-tol || x > 1+tol {
			return false
		}
		sum += x
	}
	if s.simplex() {
		// Triangle: x+y <= 0, tetrahedron: x+y+z <= -1
		limit := 0.
		if s.Dim() == 3 {
			limit = -1.
		}
		if sum > limit+tol {
			return false
		}
	}
	return true
}

func refNodeTable(s Shape) [][]float64 {
	switch s {
	case Line2:
		return [][]float64{{-1}, {1}}
	case Tri3:
		return [][]float64{{-1, -1}, {1, -1}, {-1, 1}}
	case Tri6:
		return [][]float64{
			{-1, -1}, {1, -1}, {-1, 1},
			{0, -1}, {0, 0}, {-1, 0},
		}
	case Quad4:
		return [][]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	case Quad9:
		return [][]float64{
			{-1, -1}, {1, -1}, {1, 1}, {-1, 1},
			{0, -1}, {1, 0}, {0, 1}, {-1, 0},
			{0, 0},
		}
	case Tet4:
		return [][]float64{{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}}
	case Tet10:
		return [][]float64{
			{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1},
			{0, -1, -1}, {0, 0, -1}, {-1, 0, -1},
			{-1, -1, 0}, {0, -1, 0}, {-1, 0, 0},
		}
	case Tet20:
		third := 1. / 3.
		return [][]float64{
			{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1},
			// Two nodes per edge, nearest corner first
			{-third, -1, -1}, {third, -1, -1}, // edge 0-1
			{third, -third, -1}, {-third, third, -1}, // edge 1-2
			{-1, third, -1}, {-1, -third, -1}, // edge 2-0
			{-1, -1, -third}, {-1, -1, third}, // edge 0-3
			{third, -1, -third}, {-third, -1, third}, // edge 1-3
			{-1, third, -third}, {-1, -third, third}, // edge 2-3
			// Face centroids
			{-third, -third, -1}, // face 0-1-2
			{-third, -1, -third}, // face 0-1-3
			{-1, -third, -third}, // face 0-2-3
			{-third, -third, -third}, // face 1-2-3
		}
	case Hex8:
		return [][]float64{
			{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
			{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
		}
	case Hex20:
		return hexNodes()[:20]
	case Hex27:
		return hexNodes()
	}
	return nil
}

// hexNodes lists the 27 node positions of the triquadratic hexahedron:
// 8 corners, 12 edge midpoints, 6 face centers, 1 body center. Hex20 uses
// the first 20 (corners plus edges).
func hexNodes() [][]float64 {
	return [][]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
		{0, -1, -1}, {1, 0, -1}, {0, 1, -1}, {-1, 0, -1},
		{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
		{0, -1, 1}, {1, 0, 1}, {0, 1, 1}, {-1, 0, 1},
		{0, 0, -1}, {0, 0, 1}, {0, -1, 0}, {1, 0, 0}, {0, 1, 0}, {-1, 0, 0},
		{0, 0, 0},
	}
}
