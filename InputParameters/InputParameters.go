package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type AssemblyParameters struct {
	Title              string             `yaml:"Title"`
	Operator           string             `yaml:"Operator"`           // Laplace or LinearElasticity
	MeshType           string             `yaml:"MeshType"`           // UnitSquareTri or UnitCubeTet
	MeshResolution     int                `yaml:"MeshResolution"`     // cells per side
	QuadratureStrength int                `yaml:"QuadratureStrength"` // polynomial exactness of the rule
	ParallelDegree     int                `yaml:"ParallelDegree"`     // assembly goroutines, 0 for serial
	Materials          map[string]float64 `yaml:"Materials"`          // operator material constants by name
	PointCloudFile     string             `yaml:"PointCloudFile"`     // optional quadrature cloud export
	TriMeshFile        string             `yaml:"TriMeshFile"`        // optional AVS mesh export
}

func (ap *AssemblyParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ap); err != nil {
		return err
	}
	if ap.QuadratureStrength == 0 {
		ap.QuadratureStrength = 2
	}
	if ap.MeshResolution == 0 {
		ap.MeshResolution = 1
	}
	return nil
}

// Material returns a named material constant, falling back to def when the
// input file does not set it
func (ap *AssemblyParameters) Material(name string, def float64) float64 {
	if v, ok := ap.Materials[name]; ok {
		return v
	}
	return def
}

func (ap *AssemblyParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ap.Title)
	fmt.Printf("[%s]\t\t= Operator\n", ap.Operator)
	fmt.Printf("[%s]\t= MeshType\n", ap.MeshType)
	fmt.Printf("[%d]\t\t\t= Mesh Resolution\n", ap.MeshResolution)
	fmt.Printf("[%d]\t\t\t= Quadrature Strength\n", ap.QuadratureStrength)
	fmt.Printf("[%d]\t\t\t= Parallel Degree\n", ap.ParallelDegree)
	keys := make([]string, 0, len(ap.Materials))
	for k := range ap.Materials {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Materials[%s] = %v\n", key, ap.Materials[key])
	}
}
