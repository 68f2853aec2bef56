/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"runtime"

	"github.com/fealab/fea/InputParameters"
	"github.com/fealab/fea/assembly"
	"github.com/fealab/fea/element"
	"github.com/fealab/fea/mesh"
	"github.com/fealab/fea/operators"
	"github.com/fealab/fea/quadrature"
	"github.com/fealab/fea/utils"
	"github.com/fealab/fea/vis"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type ModelAssembly struct {
	ICFile  string
	Profile bool
}

// AssembleCmd represents the assemble command
var AssembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the global matrix of an elliptic operator over a mesh",
	Long: `
Builds the mesh and operator described by the input parameters file,
assembles the global stiffness matrix, and optionally writes the quadrature
point cloud and AVS mesh for visualization.

fea assemble -I input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			ma  = &ModelAssembly{}
		)
		fmt.Println("assemble called")
		if ma.ICFile, err = cmd.Flags().GetString("inputParametersFile"); err != nil {
			panic(err)
		}
		ma.Profile, _ = cmd.Flags().GetBool("profile")
		ap := processAssemblyInput(ma)
		if ma.Profile {
			defer profile.Start().Stop()
		}
		RunAssembly(ap)
	},
}

func processAssemblyInput(ma *ModelAssembly) (ap *InputParameters.AssemblyParameters) {
	if len(ma.ICFile) == 0 {
		err := fmt.Errorf("must supply an input parameters file (-I, --inputParametersFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Plane Strain Patch"
Operator: LinearElasticity
MeshType: UnitSquareTri
MeshResolution: 16
QuadratureStrength: 2
ParallelDegree: 4
Materials:
  YoungsModulus: 200.e9
  PoissonRatio: 0.3
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	data, err := ioutil.ReadFile(ma.ICFile)
	if err != nil {
		panic(err)
	}
	ap = &InputParameters.AssemblyParameters{}
	if err = ap.Parse(data); err != nil {
		panic(err)
	}
	ap.Print()
	return
}

func init() {
	rootCmd.AddCommand(AssembleCmd)
	AssembleCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file describing operator, mesh and quadrature")
	AssembleCmd.Flags().BoolP("profile", "p", false, "write a CPU profile of the assembly")
}

func buildMesh(ap *InputParameters.AssemblyParameters) *mesh.Mesh {
	switch ap.MeshType {
	case "UnitCubeTet":
		return mesh.NewUnitCubeTetMesh(ap.MeshResolution)
	case "UnitSquareTri", "":
		return mesh.NewUnitSquareTriMesh(ap.MeshResolution)
	default:
		panic(fmt.Errorf("unknown mesh type %q", ap.MeshType))
	}
}

func RunAssembly(ap *InputParameters.AssemblyParameters) {
	var (
		msh      = buildMesh(ap)
		nThreads = ap.ParallelDegree
	)
	if nThreads == 0 {
		nThreads = runtime.NumCPU()
	}
	q, err := quadrature.ForShape(msh.Shape, ap.QuadratureStrength)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Mesh: %d elements, %d nodes, rule with %d points\n",
		msh.NumElements(), msh.NumNodes(), q.NumPoints())

	var A utils.DOK
	switch ap.Operator {
	case "LinearElasticity":
		var (
			op = operators.LinearElasticity{Dim: msh.GeomDim}
			p  = operators.YoungPoisson(
				ap.Material("YoungsModulus", 1.),
				ap.Material("PoissonRatio", 0.3))
			u = make([]float64, op.SolutionDim()*msh.NumNodes())
		)
		A, err = assembly.AssembleGlobalMatrixParallel(msh, op, u, q, p, nThreads)
	case "Laplace", "":
		u := make([]float64, msh.NumNodes())
		A, err = assembly.AssembleGlobalMatrixParallel[operators.Unitless](
			msh, operators.Laplace{}, u, q, operators.Unitless{}, nThreads)
	default:
		panic(fmt.Errorf("unknown operator %q", ap.Operator))
	}
	if err != nil {
		panic(err)
	}
	nr, nc := A.Dims()
	fmt.Printf("Assembled %d x %d matrix with %d nonzeros\n", nr, nc, A.NNZ())

	if len(ap.PointCloudFile) != 0 {
		pc, perr := vis.QuadraturePointCloud(msh, q)
		if perr != nil {
			panic(perr)
		}
		if perr = vis.WritePointCloud(pc, ap.PointCloudFile); perr != nil {
			panic(perr)
		}
		fmt.Printf("Wrote %d quadrature points to %s\n", pc.NumPoints(), ap.PointCloudFile)
	}
	if len(ap.TriMeshFile) != 0 && msh.Shape == element.Tri3 {
		gm, gerr := vis.AVSTriMesh(msh)
		if gerr != nil {
			panic(gerr)
		}
		if gerr = vis.WriteAVSTriMesh(gm, ap.TriMeshFile); gerr != nil {
			panic(gerr)
		}
		fmt.Printf("Wrote AVS TriMesh to %s\n", ap.TriMeshFile)
	}
}
