package assembly

import (
	"fmt"
	"sync"

	"github.com/fealab/fea/mesh"
	"github.com/fealab/fea/operators"
	"github.com/fealab/fea/quadrature"
	"github.com/fealab/fea/utils"
)

// GlobalDof returns the global degree of freedom of solution component m at
// a mesh node, with components interleaved per node
func GlobalDof(s, node, m int) int { return s*node + m }

// elementDofs lists the global degrees of freedom of element k in local
// ordering
func elementDofs(msh *mesh.Mesh, k, s int) utils.Index {
	var (
		nodes = msh.EToV[k]
		dofs  = make(utils.Index, 0, s*len(nodes))
	)
	for _, node := range nodes {
		for m := 0; m < s; m++ {
			dofs = append(dofs, GlobalDof(s, node, m))
		}
	}
	return dofs
}

// gatherLocal extracts the element's local coefficients from the global
// solution vector
func gatherLocal(msh *mesh.Mesh, k, s int, u []float64) []float64 {
	dofs := elementDofs(msh, k, s)
	uLocal := make([]float64, len(dofs))
	for i, dof := range dofs {
		uLocal[i] = u[dof]
	}
	return uLocal
}

func checkGlobal(msh *mesh.Mesh, s int, u []float64) {
	if len(u) != s*msh.NumNodes() {
		panic(fmt.Errorf("global solution vector has %d entries, want %d for %d nodes with %d components",
			len(u), s*msh.NumNodes(), msh.NumNodes(), s))
	}
}

// AssembleGlobalMatrix assembles the stiffness matrix of the operator over
// the whole mesh, linearized about the global solution u, by scattering
// element contributions into a sparse accumulator
func AssembleGlobalMatrix[P any](msh *mesh.Mesh,
	op operators.EllipticContraction[P], u []float64,
	q quadrature.Rule, params P) (A utils.DOK, err error) {
	var (
		s    = op.SolutionDim()
		nDof = s * msh.NumNodes()
	)
	checkGlobal(msh, s, u)
	A = utils.NewDOK(nDof, nDof)
	for k := 0; k < msh.NumElements(); k++ {
		e := msh.Element(k)
		var (
			nl     = s * e.NumNodes()
			local  = utils.NewMatrix(nl, nl)
			uLocal = gatherLocal(msh, k, s, u)
		)
		if err = AssembleElementMatrix(local, e, op, uLocal, q, params); err != nil {
			err = fmt.Errorf("element %d: %w", k, err)
			return
		}
		dofs := elementDofs(msh, k, s)
		A.AccumulateBlock(dofs, dofs, local)
	}
	return
}

// AssembleGlobalVector assembles the interior force vector of the operator
// over the whole mesh at the global solution u
func AssembleGlobalVector[P any](msh *mesh.Mesh,
	op operators.EllipticOperator[P], u []float64,
	q quadrature.Rule, params P) (f []float64, err error) {
	s := op.SolutionDim()
	checkGlobal(msh, s, u)
	f = make([]float64, s*msh.NumNodes())
	for k := 0; k < msh.NumElements(); k++ {
		e := msh.Element(k)
		local := make([]float64, s*e.NumNodes())
		if err = AssembleElementVector(local, e, op, gatherLocal(msh, k, s, u), q, params); err != nil {
			err = fmt.Errorf("element %d: %w", k, err)
			return
		}
		for i, dof := range elementDofs(msh, k, s) {
			f[dof] += local[i]
		}
	}
	return
}

// AssembleGlobalEnergy sums the operator energy over all mesh elements
func AssembleGlobalEnergy[P any](msh *mesh.Mesh,
	op operators.EllipticEnergy[P], u []float64,
	q quadrature.Rule, params P) (energy float64, err error) {
	s := op.SolutionDim()
	checkGlobal(msh, s, u)
	for k := 0; k < msh.NumElements(); k++ {
		var eK float64
		eK, err = AssembleElementEnergy(msh.Element(k), op, gatherLocal(msh, k, s, u), q, params)
		if err != nil {
			err = fmt.Errorf("element %d: %w", k, err)
			return
		}
		energy += eK
	}
	return
}

// elementBlock is one element's finished contribution, kept until the
// deterministic merge
type elementBlock struct {
	dofs  utils.Index
	local utils.Matrix
}

// AssembleGlobalMatrixParallel assembles the stiffness matrix with element
// ranges partitioned across nThreads goroutines. Workers buffer their
// element blocks and the merge runs in ascending partition order, so the
// result is bitwise identical to the serial assembly regardless of
// scheduling.
func AssembleGlobalMatrixParallel[P any](msh *mesh.Mesh,
	op operators.EllipticContraction[P], u []float64,
	q quadrature.Rule, params P, nThreads int) (A utils.DOK, err error) {
	var (
		s    = op.SolutionDim()
		nDof = s * msh.NumNodes()
	)
	checkGlobal(msh, s, u)
	if nThreads < 1 || msh.NumElements() < nThreads {
		return AssembleGlobalMatrix(msh, op, u, q, params)
	}
	var (
		pm     = utils.NewPartitionMap(nThreads, msh.NumElements())
		blocks = make([][]elementBlock, nThreads)
		errs   = make([]error, nThreads)
		wg     sync.WaitGroup
	)
	for np := 0; np < nThreads; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			buf := make([]elementBlock, 0, kMax-kMin)
			for k := kMin; k < kMax; k++ {
				e := msh.Element(k)
				var (
					nl    = s * e.NumNodes()
					local = utils.NewMatrix(nl, nl)
				)
				if lerr := AssembleElementMatrix(local, e, op, gatherLocal(msh, k, s, u), q, params); lerr != nil {
					errs[np] = fmt.Errorf("element %d: %w", k, lerr)
					return
				}
				buf = append(buf, elementBlock{dofs: elementDofs(msh, k, s), local: local})
			}
			blocks[np] = buf
		}(np)
	}
	wg.Wait()
	for _, werr := range errs {
		if werr != nil {
			err = werr
			return
		}
	}
	A = utils.NewDOK(nDof, nDof)
	for np := 0; np < nThreads; np++ {
		for _, blk := range blocks[np] {
			A.AccumulateBlock(blk.dofs, blk.dofs, blk.local)
		}
	}
	return
}
