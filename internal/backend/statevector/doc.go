// Package statevector implements the reference execution substrate for
// Ansatz architectures: an exact complex128 statevector simulation.
//
// The package satisfies the circuit.Device contract:
//   - Execute interprets an architecture manifest once per input row and
//     returns PauliZ expectation values in submission order.
//   - Gradient computes exact d(loss)/d(parameters) with the parameter-shift
//     rule, composed with the upstream cost gradient.
//
// Wire w maps to bit w of the state index (wire 0 is the least significant
// bit). Simulation cost is O(2^n) per gate, which is the intended regime for
// the small circuits this framework trains; substrates with other
// representations can replace this package behind the same contract.
package statevector
