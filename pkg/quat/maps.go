package quat

import (
	"fmt"
	"math"
)

// identityDotThreshold is the |dot| above which two unit quaternions are
// treated as the same rotation when measuring geodesic distance. acos
// loses roughly half its precision near 1, so the distance collapses to 0
// instead.
const identityDotThreshold = 0.9999

// slerpLerpThreshold is the dot above which slerp falls back to linear
// interpolation plus renormalization, avoiding division by a vanishing
// sin(theta).
const slerpLerpThreshold = 0.9995

// Exp computes e^q. For q = w + v this is e^w * (cos|v| + v/|v| sin|v|).
// Applied to a pure vector quaternion, this is the exponential map from
// the tangent space to the group of unit quaternions.
func (q Quaternion) Exp() Quaternion {
	vNorm := q.Vector().Len()
	expW := math.Exp(q.W)
	if vNorm == 0 {
		return Quaternion{W: expW}
	}
	s := expW * math.Sin(vNorm) / vNorm
	return Quaternion{expW * math.Cos(vNorm), s * q.X, s * q.Y, s * q.Z}
}

// Log computes the natural logarithm ln|q| + v/|v| acos(w/|q|). Applied
// to a unit quaternion, this is the logarithm map from the group to its
// tangent space; the rotation vector is then Log().Vector().
func (q Quaternion) Log() (Quaternion, error) {
	qNorm := q.Norm()
	if qNorm == 0 {
		return Quaternion{}, fmt.Errorf("log: %w", ErrZeroQuaternion)
	}
	vNorm := q.Vector().Len()
	if vNorm == 0 {
		return Quaternion{W: math.Log(qNorm)}, nil
	}
	s := math.Acos(q.W/qNorm) / vNorm
	return Quaternion{math.Log(qNorm), s * q.X, s * q.Y, s * q.Z}, nil
}

// Pow raises q to a scalar power via q^a = exp(a log q), with fast paths
// for exponents 0, 1, and -1.
func (q Quaternion) Pow(a float64) (Quaternion, error) {
	switch a {
	case 0:
		return Identity, nil
	case 1:
		return q, nil
	case -1:
		return q.Inverse()
	}
	l, err := q.Log()
	if err != nil {
		return Quaternion{}, fmt.Errorf("pow: %w", err)
	}
	return l.Scale(a).Exp(), nil
}

// FromAxisAngle creates the rotation of the given angle (radians) around
// the given axis. The axis is normalized and must be non-zero.
func FromAxisAngle(angle float64, axis Vec3) (Quaternion, error) {
	n := axis.Len()
	if n == 0 {
		return Quaternion{}, fmt.Errorf("from axis-angle: %w", ErrZeroAxis)
	}
	s := math.Sin(angle/2) / n
	return Quaternion{math.Cos(angle / 2), axis.X * s, axis.Y * s, axis.Z * s}, nil
}

// FromRotationVector creates the rotation whose axis is the direction of
// v and whose angle is |v|. Angles below the stability threshold collapse
// to the identity. This is the inverse of ToRotationVector.
func FromRotationVector(v Vec3) Quaternion {
	angle := v.Len()
	if angle < stabilityThreshold {
		return Identity
	}
	s := math.Sin(angle/2) / angle
	return Quaternion{math.Cos(angle / 2), v.X * s, v.Y * s, v.Z * s}
}

// ToRotationVector converts a unit quaternion to its rotation vector: the
// rotation axis scaled by the angle 2 acos(w). Rotations within the
// stability threshold of the identity return the zero vector, since their
// axis is undefined.
func (q Quaternion) ToRotationVector() (Vec3, error) {
	if !q.IsUnit() {
		return Vec3{}, fmt.Errorf("to rotation vector: %w", ErrNotUnit)
	}
	if math.Abs(q.W-1) < stabilityThreshold {
		return Vec3{}, nil
	}
	vNorm := q.Vector().Len()
	if vNorm < stabilityThreshold {
		return Vec3{}, nil
	}
	angle := 2 * math.Acos(clamp(q.W, -1, 1))
	return q.Vector().Scale(angle / vNorm), nil
}

// GeodesicDistance returns the shortest angular separation between two
// unit quaternions along the great circle on S³: 2 acos(|q · o|), in
// [0, π]. Taking the absolute value of the dot product identifies q and
// -q, which represent the same rotation.
func (q Quaternion) GeodesicDistance(o Quaternion) (float64, error) {
	if !q.IsUnit() || !o.IsUnit() {
		return 0, fmt.Errorf("geodesic distance: %w", ErrNotUnit)
	}
	d := clamp(math.Abs(q.Dot(o)), 0, 1)
	if d > identityDotThreshold {
		return 0, nil
	}
	return 2 * math.Acos(d), nil
}

// GeodesicRotation returns the rotation carrying q to target, that is
// q⁻¹ * target. Both quaternions must be unit.
func (q Quaternion) GeodesicRotation(target Quaternion) (Quaternion, error) {
	if !q.IsUnit() || !target.IsUnit() {
		return Quaternion{}, fmt.Errorf("geodesic rotation: %w", ErrNotUnit)
	}
	inv, err := q.Inverse()
	if err != nil {
		return Quaternion{}, fmt.Errorf("geodesic rotation: %w", err)
	}
	return inv.Mul(target), nil
}

// Slerp spherically interpolates between q1 and q2 by t in [0, 1],
// following the shortest arc. q2 is negated when the dot product is
// negative so the interpolation never takes the long way around.
func Slerp(q1, q2 Quaternion, t float64) (Quaternion, error) {
	if t < 0 || t > 1 {
		return Quaternion{}, fmt.Errorf("slerp: interpolation parameter %v outside [0, 1]", t)
	}

	dot := q1.Dot(q2)
	if dot < 0 {
		q2 = q2.Neg()
		dot = -dot
	}

	if dot > slerpLerpThreshold {
		return q1.Add(q2.Sub(q1).Scale(t)).Normalize()
	}

	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	return q1.Scale(math.Sin((1-t)*theta) / sinTheta).Add(q2.Scale(math.Sin(t*theta) / sinTheta)), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
