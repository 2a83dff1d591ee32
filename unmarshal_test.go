package foamdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type solverControls struct {
	Solver         string  `foam:"solver"`
	Preconditioner string  `foam:"preconditioner"`
	Tolerance      float64 `foam:"tolerance"`
	RelTol         float64 `foam:"relTol"`
}

func TestUnmarshal_ControlDict(t *testing.T) {
	type control struct {
		Application       string  `foam:"application"`
		StartTime         float64 `foam:"startTime"`
		EndTime           float64 `foam:"endTime"`
		DeltaT            float64
		WriteInterval     int    `foam:"writeInterval"`
		WritePrecision    uint   `foam:"writePrecision"`
		WriteCompression  bool   `foam:"writeCompression"`
		RunTimeModifiable bool   `foam:"runTimeModifiable"`
		Ignored           string `foam:"-"`
	}

	doc, err := NewParser().ParseFile("testdata/controlDict")
	require.NoError(t, err)

	var c control
	require.NoError(t, UnmarshalDocument(doc, &c))
	assert.Equal(t, control{
		Application:       "icoFoam",
		StartTime:         0,
		EndTime:           0.5,
		DeltaT:            0.005,
		WriteInterval:     20,
		WritePrecision:    6,
		WriteCompression:  false,
		RunTimeModifiable: true,
	}, c)
}

func TestUnmarshal_Nested(t *testing.T) {
	type solution struct {
		Solvers map[string]solverControls `foam:"solvers"`
		PISO    struct {
			NCorrectors int `foam:"nCorrectors"`
		} `foam:"PISO"`
	}

	opts := DefaultOptions()
	opts.MacroExpansion = true
	doc, err := Load("testdata/fvSolution", opts)
	require.NoError(t, err)

	var s solution
	require.NoError(t, UnmarshalDocument(doc, &s))
	assert.Equal(t, 2, s.PISO.NCorrectors)
	assert.Equal(t, solverControls{Solver: "PCG", Preconditioner: "DIC", Tolerance: 1e-06, RelTol: 0}, s.Solvers["pFinal"])
	assert.Equal(t, "smoothSolver", s.Solvers["U"].Solver)
}

func TestUnmarshal_Sequences(t *testing.T) {
	type mesh struct {
		Origin   [3]float64     `foam:"origin"`
		Scale    []float64      `foam:"scale"`
		Patches  []string       `foam:"patches"`
		Velocity *[3]float64    `foam:"velocity"`
		Blocks   [][]int        `foam:"blocks"`
		Raw      Value          `foam:"raw"`
		Any      interface{}    `foam:"any"`
		Counts   map[string]int `foam:"counts"`
	}

	var m mesh
	err := Unmarshal([]byte(`
origin (0 0 0.5);
scale (1 2);
patches (inlet outlet);
velocity uniform (1 0 0);
blocks ((0 1) (2 3));
raw $undefined;
any word;
counts { a 1; b 2; }
`), &m)
	require.NoError(t, err)

	assert.Equal(t, [3]float64{0, 0, 0.5}, m.Origin)
	assert.Equal(t, []float64{1, 2}, m.Scale)
	assert.Equal(t, []string{"inlet", "outlet"}, m.Patches)
	require.NotNil(t, m.Velocity)
	assert.Equal(t, [3]float64{1, 0, 0}, *m.Velocity)
	assert.Equal(t, [][]int{{0, 1}, {2, 3}}, m.Blocks)
	assert.Equal(t, Word("$undefined"), m.Raw)
	assert.Equal(t, Word("word"), m.Any)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, m.Counts)
}

func TestUnmarshal_Switches(t *testing.T) {
	type switches struct {
		A, B, C, D, E bool
	}
	var s switches
	require.NoError(t, Unmarshal([]byte("a yes;\nb off;\nc 1;\nd none;\ne on;"), &s))
	assert.Equal(t, switches{A: true, E: true, C: true}, s)
}

func TestUnmarshal_Errors(t *testing.T) {
	type required struct {
		Name string `foam:"name,required"`
	}
	assert.Error(t, Unmarshal([]byte("other 1;"), &required{}))

	type typed struct {
		N int     `foam:"n"`
		U uint    `foam:"u"`
		F float64 `foam:"f"`
		B bool    `foam:"b"`
		A [2]int  `foam:"a"`
	}
	tests := []string{
		"n 1.5;",
		"n (1 2);",
		"u -1;",
		"f (1 2);",
		"b maybe;",
		"a (1 2 3);",
	}
	for _, src := range tests {
		var v typed
		assert.Error(t, Unmarshal([]byte(src), &v), src)
	}

	var notPtr typed
	assert.Error(t, UnmarshalDict(NewDict(), notPtr))
	n := 1
	assert.Error(t, UnmarshalDict(NewDict(), &n))
}
