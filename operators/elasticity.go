package operators

import (
	"fmt"

	"github.com/fealab/fea/utils"
)

// LameParameters carries the material data of an isotropic linear elastic
// solid. YoungPoisson converts the engineering constants.
type LameParameters struct {
	Mu     float64 // shear modulus
	Lambda float64 // first Lame parameter
}

// YoungPoisson returns the Lame parameters for Young's modulus E and
// Poisson ratio nu
func YoungPoisson(E, nu float64) LameParameters {
	return LameParameters{
		Mu:     E / (2 * (1 + nu)),
		Lambda: E * nu / ((1 + nu) * (1 - 2*nu)),
	}
}

// LinearElasticity is the isotropic small strain elasticity operator in Dim
// spatial dimensions. The solution is the displacement field, so the
// solution dimension equals the spatial dimension, and
//
//	g(G) = 2 mu eps + lambda tr(eps) I,  eps = (G + G^T)/2
type LinearElasticity struct {
	Dim int
}

func (e LinearElasticity) SolutionDim() int { return e.Dim }

func (e LinearElasticity) checkGrad(gradU utils.Matrix) {
	nr, nc := gradU.Dims()
	if nr != e.Dim || nc != e.Dim {
		panic(fmt.Errorf("displacement gradient is %d x %d, want %d x %d",
			nr, nc, e.Dim, e.Dim))
	}
}

func (e LinearElasticity) ComputeEllipticTerm(gradU utils.Matrix, p LameParameters) utils.Matrix {
	e.checkGrad(gradU)
	var (
		d   = e.Dim
		out = utils.NewMatrix(d, d)
		tr  float64
	)
	for i := 0; i < d; i++ {
		tr += gradU.At(i, i)
	}
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			eps := 0.5 * (gradU.At(i, j) + gradU.At(j, i))
			val := 2 * p.Mu * eps
			if i == j {
				val += p.Lambda * tr
			}
			out.Set(i, j, val)
		}
	}
	return out
}

// Contract returns the d x d block
//
//	C_ij = mu (a . b) delta_ij + mu a_j b_i + lambda a_i b_j
//
// obtained by contracting the constant elasticity tensor with a and b
func (e LinearElasticity) Contract(_ utils.Matrix, a, b []float64, p LameParameters) utils.Matrix {
	var (
		d   = e.Dim
		out = utils.NewMatrix(d, d)
		dot float64
	)
	for i := 0; i < d; i++ {
		dot += a[i] * b[i]
	}
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			val := p.Mu*a[j]*b[i] + p.Lambda*a[i]*b[j]
			if i == j {
				val += p.Mu * dot
			}
			out.Set(i, j, val)
		}
	}
	return out
}

// ComputeEnergy returns the strain energy density
//
//	psi = mu eps : eps + lambda tr(eps)^2 / 2
func (e LinearElasticity) ComputeEnergy(gradU utils.Matrix, p LameParameters) float64 {
	e.checkGrad(gradU)
	var (
		d       = e.Dim
		tr, e2f float64
	)
	for i := 0; i < d; i++ {
		tr += gradU.At(i, i)
		for j := 0; j < d; j++ {
			eps := 0.5 * (gradU.At(i, j) + gradU.At(j, i))
			e2f += eps * eps
		}
	}
	return p.Mu*e2f + 0.5*p.Lambda*tr*tr
}
