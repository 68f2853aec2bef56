package operators

import (
	"github.com/fealab/fea/utils"
)

// Unitless is the payload type of operators with no material parameters
type Unitless = struct{}

// Laplace is the scalar Laplace operator, g(grad u) = grad u. Its weak form
// is the Poisson problem and its energy the Dirichlet energy.
type Laplace struct{}

func (Laplace) SolutionDim() int { return 1 }

func (Laplace) ComputeEllipticTerm(gradU utils.Matrix, _ Unitless) utils.Matrix {
	return gradU.Copy()
}

// Contract returns the 1x1 block (a . b), the derivative of the identity
// elliptic term contracted with the vector pair
func (Laplace) Contract(_ utils.Matrix, a, b []float64, _ Unitless) utils.Matrix {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return utils.NewMatrix(1, 1, []float64{dot})
}

// AccumulateContractions fills the whole Gram block in one pass, skipping the
// per pair 1x1 allocations of the generic path
func (Laplace) AccumulateContractions(out utils.Matrix, alpha float64,
	gradU utils.Matrix, a, b []float64, _ Unitless) {
	var (
		d, _ = gradU.Dims()
		M, N = len(a) / d, len(b) / d
	)
	for bigI := 0; bigI < M; bigI++ {
		aI := a[bigI*d : (bigI+1)*d]
		for bigJ := 0; bigJ < N; bigJ++ {
			bJ := b[bigJ*d : (bigJ+1)*d]
			var dot float64
			for i := 0; i < d; i++ {
				dot += aI[i] * bJ[i]
			}
			out.Set(bigI, bigJ, out.At(bigI, bigJ)+alpha*dot)
		}
	}
}

// ComputeEnergy returns the Dirichlet energy density |grad u|^2 / 2
func (Laplace) ComputeEnergy(gradU utils.Matrix, _ Unitless) (psi float64) {
	for _, g := range gradU.DataP {
		psi += g * g
	}
	psi *= 0.5
	return
}
