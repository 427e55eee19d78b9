// Package quat implements the quaternion algebra and the Lie-group maps
// used for learning rotations: Hamilton products, exponential/logarithm
// maps, rotation-vector conversions, geodesic distance, and slerp.
//
// Quaternions are immutable values. Every operation returns a new value,
// so they are copied freely and safe to share across goroutines.
package quat

import (
	"errors"
	"fmt"
	"math"
)

// stabilityThreshold guards conversions near the identity rotation, where
// the axis direction is numerically undefined.
const stabilityThreshold = 1e-10

// unitTolerance is the allowed deviation of the norm from 1 for a
// quaternion to still count as unit. Products of unit quaternions drift by
// a few ulps per multiplication, well inside this window.
const unitTolerance = 1e-10

var (
	// ErrNonFinite reports a NaN or infinite component at construction.
	ErrNonFinite = errors.New("quaternion components must be finite")

	// ErrZeroQuaternion reports an operation that is undefined on the
	// zero quaternion (normalize, inverse, log).
	ErrZeroQuaternion = errors.New("operation undefined on zero quaternion")

	// ErrNotUnit reports an operand that must be a unit quaternion.
	ErrNotUnit = errors.New("quaternion must be unit")

	// ErrNotVector reports an operand that must be a pure vector
	// quaternion (zero scalar part).
	ErrNotVector = errors.New("quaternion must be a pure vector")

	// ErrZeroAxis reports a zero rotation axis.
	ErrZeroAxis = errors.New("rotation axis must be non-zero")

	// ErrZeroDivisor reports scalar division by zero.
	ErrZeroDivisor = errors.New("division by zero scalar")
)

// Quaternion represents the value w + xi + yj + zk.
type Quaternion struct {
	W, X, Y, Z float64
}

// Distinguished quaternion values.
var (
	// Zero is the additive identity 0.
	Zero = Quaternion{}

	// Identity is the multiplicative identity 1, the no-op rotation.
	Identity = Quaternion{W: 1}

	// I is the basis vector i.
	I = Quaternion{X: 1}

	// J is the basis vector j.
	J = Quaternion{Y: 1}

	// K is the basis vector k.
	K = Quaternion{Z: 1}
)

// New creates a quaternion from its four components.
// Components must be finite; NaN and ±Inf are rejected.
func New(w, x, y, z float64) (Quaternion, error) {
	if !isFinite(w) || !isFinite(x) || !isFinite(y) || !isFinite(z) {
		return Quaternion{}, fmt.Errorf("new quaternion (%v, %v, %v, %v): %w", w, x, y, z, ErrNonFinite)
	}
	return Quaternion{w, x, y, z}, nil
}

// FromVector creates a quaternion from a scalar part and a 3D vector part.
func FromVector(w float64, v Vec3) (Quaternion, error) {
	return New(w, v.X, v.Y, v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Scalar returns the scalar (real) part w.
func (q Quaternion) Scalar() float64 {
	return q.W
}

// Vector returns the vector part (x, y, z).
func (q Quaternion) Vector() Vec3 {
	return Vec3{q.X, q.Y, q.Z}
}

// IsScalar reports whether the vector part is zero.
func (q Quaternion) IsScalar() bool {
	return q.X == 0 && q.Y == 0 && q.Z == 0
}

// IsVector reports whether the scalar part is zero.
func (q Quaternion) IsVector() bool {
	return q.W == 0
}

// IsUnit reports whether the norm is 1 within tolerance.
func (q Quaternion) IsUnit() bool {
	return math.Abs(q.Norm()-1) < unitTolerance
}

// IsZero reports whether all components are exactly zero.
func (q Quaternion) IsZero() bool {
	return q == Zero
}

// Add returns the component-wise sum q + o.
func (q Quaternion) Add(o Quaternion) Quaternion {
	return Quaternion{q.W + o.W, q.X + o.X, q.Y + o.Y, q.Z + o.Z}
}

// Sub returns the component-wise difference q - o.
func (q Quaternion) Sub(o Quaternion) Quaternion {
	return Quaternion{q.W - o.W, q.X - o.X, q.Y - o.Y, q.Z - o.Z}
}

// Neg returns the negation -q.
func (q Quaternion) Neg() Quaternion {
	return Quaternion{-q.W, -q.X, -q.Y, -q.Z}
}

// Scale returns the scalar product q * s.
func (q Quaternion) Scale(s float64) Quaternion {
	return Quaternion{q.W * s, q.X * s, q.Y * s, q.Z * s}
}

// Div returns the scalar quotient q / s.
func (q Quaternion) Div(s float64) (Quaternion, error) {
	if s == 0 {
		return Quaternion{}, ErrZeroDivisor
	}
	return Quaternion{q.W / s, q.X / s, q.Y / s, q.Z / s}, nil
}

// Mul returns the Hamilton product q * o. Multiplication is
// non-commutative: ij = k but ji = -k.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Conj returns the conjugate (vector part negated).
func (q Quaternion) Conj() Quaternion {
	return Quaternion{q.W, -q.X, -q.Y, -q.Z}
}

// Norm returns the magnitude sqrt(w² + x² + y² + z²).
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.NormSq())
}

// NormSq returns the squared magnitude (faster, no sqrt).
func (q Quaternion) NormSq() float64 {
	return q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z
}

// Normalize returns the unit quaternion in the same direction.
func (q Quaternion) Normalize() (Quaternion, error) {
	n := q.Norm()
	if n == 0 {
		return Quaternion{}, fmt.Errorf("normalize: %w", ErrZeroQuaternion)
	}
	return q.Scale(1 / n), nil
}

// Inverse returns q⁻¹ such that q * q⁻¹ = 1.
func (q Quaternion) Inverse() (Quaternion, error) {
	n2 := q.NormSq()
	if n2 == 0 {
		return Quaternion{}, fmt.Errorf("inverse: %w", ErrZeroQuaternion)
	}
	return q.Conj().Scale(1 / n2), nil
}

// Dot returns the Euclidean inner product of the two 4-tuples.
func (q Quaternion) Dot(o Quaternion) float64 {
	return q.W*o.W + q.X*o.X + q.Y*o.Y + q.Z*o.Z
}

// Cross returns the 3D cross product of two pure vector quaternions,
// lifted back into a vector quaternion. Both operands must have a zero
// scalar part.
func (q Quaternion) Cross(o Quaternion) (Quaternion, error) {
	if !q.IsVector() || !o.IsVector() {
		return Quaternion{}, fmt.Errorf("cross: %w", ErrNotVector)
	}
	v := q.Vector().Cross(o.Vector())
	return Quaternion{0, v.X, v.Y, v.Z}, nil
}

// String formats the quaternion with six decimal places.
func (q Quaternion) String() string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f, %.6f)", q.W, q.X, q.Y, q.Z)
}
