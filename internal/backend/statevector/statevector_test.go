package statevector

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansatz-ml/ansatz/internal/circuit"
)

func buildArch(t *testing.T, featureDim, numWires, depth int, scheme circuit.Scheme, observables []int) *circuit.Architecture {
	t.Helper()
	enc, err := circuit.BuildEncoding(featureDim, scheme, numWires)
	require.NoError(t, err)
	vars, err := circuit.BuildVariational(numWires, depth, circuit.EntangleLinear, []circuit.Axis{circuit.AxisX, circuit.AxisZ})
	require.NoError(t, err)
	meas, err := circuit.BuildMeasurement(numWires, observables)
	require.NoError(t, err)
	arch, err := circuit.Assemble(enc, vars, meas, circuit.InitPolicy{})
	require.NoError(t, err)
	return arch
}

func TestExecute_AngleEncoding(t *testing.T) {
	// With all variational angles at zero the rotations are identities and
	// the CNOT chain leaves wire 0 untouched, so RX(x)|0⟩ reads ⟨Z_0⟩ = cos(x).
	arch := buildArch(t, 1, 2, 1, circuit.SchemeAngle, []int{0})
	params := make([]float64, arch.ParamCount())

	dev := New()
	for _, x := range []float64{0, 0.3, math.Pi / 2, math.Pi, 2.5} {
		outputs, err := dev.Execute(arch, params, [][]float64{{x}})
		require.NoError(t, err)
		require.Len(t, outputs, 1)
		require.Len(t, outputs[0], 1)
		assert.InDelta(t, math.Cos(x), outputs[0][0], 1e-12, "x=%v", x)
	}
}

func TestExecute_AmplitudeEncoding(t *testing.T) {
	// [3,4,0,0] normalizes to [3/5,4/5,0,0]; the zero-angle layer's CNOT(0,1)
	// moves |01⟩ to |11⟩ without changing |amp|² on wire 0, so
	// ⟨Z_0⟩ = 9/25 − 16/25 = −7/25.
	arch := buildArch(t, 4, 2, 1, circuit.SchemeAmplitude, []int{0})
	params := make([]float64, arch.ParamCount())

	outputs, err := New().Execute(arch, params, [][]float64{{3, 4, 0, 0}})
	require.NoError(t, err)
	assert.InDelta(t, -7.0/25.0, outputs[0][0], 1e-12)
}

func TestExecute_AmplitudeZeroVector(t *testing.T) {
	arch := buildArch(t, 4, 2, 1, circuit.SchemeAmplitude, []int{0})
	params := make([]float64, arch.ParamCount())

	_, err := New().Execute(arch, params, [][]float64{{0, 0, 0, 0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-zero")
}

func TestExecute_BasisEncoding(t *testing.T) {
	arch := buildArch(t, 2, 2, 1, circuit.SchemeBasis, []int{0, 1})
	params := make([]float64, arch.ParamCount())

	// Feature 1 flips wire 0, feature 0 leaves wire 1 alone. CNOT(0,1) then
	// flips wire 1 because wire 0 is set.
	outputs, err := New().Execute(arch, params, [][]float64{{1, 0}})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, outputs[0][0], 1e-12)
	assert.InDelta(t, -1.0, outputs[0][1], 1e-12)
}

func TestExecute_ParamCountMismatch(t *testing.T) {
	arch := buildArch(t, 2, 2, 1, circuit.SchemeAngle, []int{0})

	_, err := New().Execute(arch, []float64{0.1}, [][]float64{{0.2, 0.3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter vector")
}

func TestExecute_BatchOrder(t *testing.T) {
	arch := buildArch(t, 1, 2, 1, circuit.SchemeAngle, []int{0})
	params := make([]float64, arch.ParamCount())

	inputs := [][]float64{{0.1}, {0.9}, {2.2}}
	outputs, err := New().Execute(arch, params, inputs)
	require.NoError(t, err)
	require.Len(t, outputs, len(inputs))
	for i, in := range inputs {
		assert.InDelta(t, math.Cos(in[0]), outputs[i][0], 1e-12)
	}
}

func TestGradient_MatchesFiniteDifferences(t *testing.T) {
	arch := buildArch(t, 2, 3, 2, circuit.SchemeAngle, []int{0, 1})

	rng := rand.New(rand.NewSource(11))
	params := arch.InitParams(rng)
	for i := range params {
		params[i] = rng.Float64()*2 - 1
	}
	inputs := [][]float64{{0.4, -0.7}, {1.1, 0.2}}
	upstream := [][]float64{{0.5, -1.2}, {0.3, 0.8}}

	dev := New()
	grad, err := dev.Gradient(arch, params, inputs, upstream)
	require.NoError(t, err)
	require.Len(t, grad, len(params))

	// Scalar objective Σ upstream·outputs, differentiated numerically.
	objective := func(p []float64) float64 {
		outputs, err := dev.Execute(arch, p, inputs)
		require.NoError(t, err)
		sum := 0.0
		for i := range outputs {
			for j := range outputs[i] {
				sum += upstream[i][j] * outputs[i][j]
			}
		}
		return sum
	}

	const h = 1e-6
	probe := append([]float64(nil), params...)
	for k := range params {
		probe[k] = params[k] + h
		plus := objective(probe)
		probe[k] = params[k] - h
		minus := objective(probe)
		probe[k] = params[k]
		assert.InDelta(t, (plus-minus)/(2*h), grad[k], 1e-5, "parameter %d", k)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	arch := buildArch(t, 2, 3, 2, circuit.SchemeAngle, []int{0, 1})
	rng := rand.New(rand.NewSource(29))
	params := make([]float64, arch.ParamCount())
	for i := range params {
		params[i] = rng.Float64()
	}
	inputs := make([][]float64, 16)
	upstream := make([][]float64, 16)
	for i := range inputs {
		inputs[i] = []float64{rng.Float64(), rng.Float64()}
		upstream[i] = []float64{rng.Float64(), rng.Float64()}
	}

	par, seq := New(), NewSequential()

	outPar, err := par.Execute(arch, params, inputs)
	require.NoError(t, err)
	outSeq, err := seq.Execute(arch, params, inputs)
	require.NoError(t, err)
	assert.Equal(t, outSeq, outPar)

	gradPar, err := par.Gradient(arch, params, inputs, upstream)
	require.NoError(t, err)
	gradSeq, err := seq.Gradient(arch, params, inputs, upstream)
	require.NoError(t, err)
	assert.Equal(t, gradSeq, gradPar)
}

func TestGradient_UpstreamShapeMismatch(t *testing.T) {
	arch := buildArch(t, 1, 2, 1, circuit.SchemeAngle, []int{0})
	params := make([]float64, arch.ParamCount())

	_, err := New().Gradient(arch, params, [][]float64{{0.5}}, [][]float64{{1, 2}})
	require.Error(t, err)
}
