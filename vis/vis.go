// Package vis exports meshes and assembly diagnostics for visualization:
// triangle meshes in the AVS TriMesh layout and quadrature point clouds
// carrying the physical integration weights.
package vis

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/fealab/fea/assembly"
	"github.com/fealab/fea/element"
	"github.com/fealab/fea/mesh"
	"github.com/fealab/fea/quadrature"
	"github.com/notargets/avs/geometry"
)

// AVSTriMesh converts a 2D triangle mesh into the AVS TriMesh layout,
// float32 interleaved coordinates plus int64 vertex triples
func AVSTriMesh(msh *mesh.Mesh) (gm geometry.TriMesh, err error) {
	if msh.Shape != element.Tri3 || msh.GeomDim != 2 {
		err = fmt.Errorf("AVS TriMesh export needs a 2D Tri3 mesh, got %v in %dD",
			msh.Shape, msh.GeomDim)
		return
	}
	gm = geometry.TriMesh{
		XY:       make([]float32, 2*msh.NumNodes()),
		TriVerts: make([][3]int64, msh.NumElements()),
	}
	for i := 0; i < msh.NumNodes(); i++ {
		v := msh.Vertex(i)
		gm.XY[2*i] = float32(v[0])
		gm.XY[2*i+1] = float32(v[1])
	}
	for k, nodes := range msh.EToV {
		for n := 0; n < 3; n++ {
			gm.TriVerts[k][n] = int64(nodes[n])
		}
	}
	return
}

// WriteAVSTriMesh writes the TriMesh in the little endian binary layout the
// AVS toolchain reads: dimension count, vertex triple count, triples,
// coordinate count, coordinates
func WriteAVSTriMesh(gm geometry.TriMesh, fileName string) (err error) {
	file, err := os.Create(fileName)
	if err != nil {
		return
	}
	defer file.Close()
	return writeAVSTriMesh(gm, file)
}

func writeAVSTriMesh(gm geometry.TriMesh, w io.Writer) (err error) {
	var (
		nDimensions = int64(2)
		lenTriVerts = int64(3 * len(gm.TriVerts))
		lenXYCoords = int64(len(gm.XY))
	)
	for _, v := range []interface{}{
		nDimensions, lenTriVerts, gm.TriVerts, lenXYCoords, gm.XY,
	} {
		if err = binary.Write(w, binary.LittleEndian, v); err != nil {
			return
		}
	}
	return
}

// PointCloud is the quadrature point cloud of a mesh: every quadrature point
// of every element in physical coordinates, its physical weight (reference
// weight times |det J|), and the element it belongs to. Summing the weights
// integrates 1 over the mesh.
type PointCloud struct {
	Dim     int
	Points  []float64 // interleaved, Dim per point
	Weights []float64
	Cell    []int64
}

func (pc PointCloud) NumPoints() int { return len(pc.Weights) }

// QuadraturePointCloud maps the rule onto every element of the mesh
func QuadraturePointCloud(msh *mesh.Mesh, q quadrature.Rule) (pc PointCloud, err error) {
	var (
		np = q.NumPoints()
		d  = msh.GeomDim
		K  = msh.NumElements()
	)
	pc = PointCloud{
		Dim:     d,
		Points:  make([]float64, 0, d*np*K),
		Weights: make([]float64, 0, np*K),
		Cell:    make([]int64, 0, np*K),
	}
	for k := 0; k < K; k++ {
		pts, wts, terr := assembly.TransformQuadratureToPhysical(msh.Element(k), q)
		if terr != nil {
			err = fmt.Errorf("element %d: %w", k, terr)
			return
		}
		for i := 0; i < np; i++ {
			for c := 0; c < d; c++ {
				pc.Points = append(pc.Points, pts.At(i, c))
			}
			pc.Weights = append(pc.Weights, wts[i])
			pc.Cell = append(pc.Cell, int64(k))
		}
	}
	return
}

// WritePointCloud writes the cloud little endian: dimension, point count,
// coordinates, weights, cell indices
func WritePointCloud(pc PointCloud, fileName string) (err error) {
	file, err := os.Create(fileName)
	if err != nil {
		return
	}
	defer file.Close()
	return writePointCloud(pc, file)
}

func writePointCloud(pc PointCloud, w io.Writer) (err error) {
	for _, v := range []interface{}{
		int64(pc.Dim), int64(pc.NumPoints()), pc.Points, pc.Weights, pc.Cell,
	} {
		if err = binary.Write(w, binary.LittleEndian, v); err != nil {
			return
		}
	}
	return
}
