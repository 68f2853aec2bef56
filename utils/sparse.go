package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		M:    sparse.NewDOK(nr, nc),
		name: "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

// Accumulate adds val into entry (i,j) as a running sum, the scatter
// primitive used during global assembly.
func (m DOK) Accumulate(i, j int, val float64) DOK {
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

func (m DOK) Set(i, j int, val float64) DOK {
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

// AccumulateBlock scatters a dense local matrix into the global structure
// using row and column index maps. Panics when the index map lengths do not
// match the local matrix dimensions.
func (m DOK) AccumulateBlock(rows, cols Index, local Matrix) DOK {
	var (
		nr, nc = local.Dims()
	)
	if len(rows) != nr || len(cols) != nc {
		err := fmt.Errorf("index maps do not match local dimensions: len(rows),len(cols) = %v,%v, local nr,nc = %v,%v",
			len(rows), len(cols), nr, nc)
		panic(err)
	}
	// Column-major traversal to match the CSC-friendly target layout
	for j := 0; j < nc; j++ {
		for i := 0; i < nr; i++ {
			if val := local.DataP[i*nc+j]; val != 0 {
				m.Accumulate(rows[i], cols[j], val)
			}
		}
	}
	return m
}

func (m DOK) NNZ() int {
	return m.M.NNZ()
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }

func (m CSR) NNZ() int {
	return m.M.NNZ()
}
