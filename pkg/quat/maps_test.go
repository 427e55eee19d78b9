package quat

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func vecNear(a, b Vec3, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

func TestExpOfScalar(t *testing.T) {
	got := (Quaternion{W: 1}).Exp()
	if !quatNear(got, Quaternion{W: math.E}, 1e-12) {
		t.Errorf("exp(1) = %v, want (e, 0, 0, 0)", got)
	}

	if got := Zero.Exp(); !quatNear(got, Identity, 1e-12) {
		t.Errorf("exp(0) = %v, want identity", got)
	}
}

func TestExpOfVectorIsUnit(t *testing.T) {
	vectors := []Vec3{
		{0.1, 0, 0},
		{0, -0.5, 0.5},
		{1, 1, 1},
		{-2, 0.3, 0.7},
	}
	for _, v := range vectors {
		q := Quaternion{0, v.X, v.Y, v.Z}.Exp()
		if !q.IsUnit() {
			t.Errorf("exp(%v).Norm() = %v, want 1", v, q.Norm())
		}
	}
}

func TestLog(t *testing.T) {
	// Quarter turn around z: log vector should be the half-angle axis.
	q, err := FromAxisAngle(math.Pi/2, V3(0, 0, 1))
	if err != nil {
		t.Fatalf("FromAxisAngle: %v", err)
	}
	l, err := q.Log()
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if !vecNear(l.Vector(), V3(0, 0, math.Pi/4), 1e-12) {
		t.Errorf("log vector = %v, want (0, 0, π/4)", l.Vector())
	}
	if !scalar.EqualWithinAbs(l.W, 0, 1e-12) {
		t.Errorf("log scalar part = %v, want 0 for unit quaternion", l.W)
	}

	// Scalar quaternion: log is the real logarithm.
	l, err = (Quaternion{W: math.E}).Log()
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if !quatNear(l, Quaternion{W: 1}, 1e-12) {
		t.Errorf("log(e) = %v, want (1, 0, 0, 0)", l)
	}

	if _, err := Zero.Log(); !errors.Is(err, ErrZeroQuaternion) {
		t.Errorf("Log(zero) error = %v, want ErrZeroQuaternion", err)
	}
}

func TestExpLogRoundTrip(t *testing.T) {
	units := []Quaternion{
		mustNormalize(t, Quaternion{1, 1, 0, 0}),
		mustNormalize(t, Quaternion{0.3, -0.4, 0.5, 0.7}),
		mustNormalize(t, Quaternion{2, 1, -1, 0.5}),
	}
	for _, q := range units {
		l, err := q.Log()
		if err != nil {
			t.Fatalf("Log(%v): %v", q, err)
		}
		if got := l.Exp(); !quatNear(got, q, 1e-9) {
			t.Errorf("exp(log(%v)) = %v", q, got)
		}
	}
}

func TestPow(t *testing.T) {
	q := mustNormalize(t, Quaternion{1, 2, 3, 4})

	t.Run("zero exponent", func(t *testing.T) {
		got, err := q.Pow(0)
		if err != nil {
			t.Fatalf("Pow: %v", err)
		}
		if got != Identity {
			t.Errorf("q^0 = %v, want identity", got)
		}
	})

	t.Run("unit exponent", func(t *testing.T) {
		got, err := q.Pow(1)
		if err != nil {
			t.Fatalf("Pow: %v", err)
		}
		if got != q {
			t.Errorf("q^1 = %v, want q", got)
		}
	})

	t.Run("inverse exponent", func(t *testing.T) {
		got, err := q.Pow(-1)
		if err != nil {
			t.Fatalf("Pow: %v", err)
		}
		inv, _ := q.Inverse()
		if !quatNear(got, inv, 1e-12) {
			t.Errorf("q^-1 = %v, want %v", got, inv)
		}
	})

	t.Run("square matches product", func(t *testing.T) {
		got, err := q.Pow(2)
		if err != nil {
			t.Fatalf("Pow: %v", err)
		}
		if want := q.Mul(q); !quatNear(got, want, 1e-9) {
			t.Errorf("q^2 = %v, want %v", got, want)
		}
	})

	t.Run("half power squares back", func(t *testing.T) {
		half, err := q.Pow(0.5)
		if err != nil {
			t.Fatalf("Pow: %v", err)
		}
		if got := half.Mul(half); !quatNear(got, q, 1e-9) {
			t.Errorf("(q^0.5)² = %v, want %v", got, q)
		}
	})

	t.Run("zero quaternion", func(t *testing.T) {
		if _, err := Zero.Pow(0.5); !errors.Is(err, ErrZeroQuaternion) {
			t.Errorf("Zero.Pow(0.5) error = %v, want ErrZeroQuaternion", err)
		}
	})
}

func TestFromAxisAngle(t *testing.T) {
	q, err := FromAxisAngle(math.Pi/2, V3(0, 0, 1))
	if err != nil {
		t.Fatalf("FromAxisAngle: %v", err)
	}
	want := Quaternion{math.Cos(math.Pi / 4), 0, 0, math.Sin(math.Pi / 4)}
	if !quatNear(q, want, 1e-12) {
		t.Errorf("FromAxisAngle(π/2, ẑ) = %v, want %v", q, want)
	}

	// The axis is normalized, so scaling it changes nothing.
	scaled, err := FromAxisAngle(math.Pi/2, V3(0, 0, 10))
	if err != nil {
		t.Fatalf("FromAxisAngle: %v", err)
	}
	if !quatNear(scaled, q, 1e-12) {
		t.Errorf("scaled axis gave %v, want %v", scaled, q)
	}

	if _, err := FromAxisAngle(1, V3(0, 0, 0)); !errors.Is(err, ErrZeroAxis) {
		t.Errorf("zero axis error = %v, want ErrZeroAxis", err)
	}
}

func TestRotationVectorRoundTrip(t *testing.T) {
	vectors := []Vec3{
		{0.5, 0, 0},
		{0, 1, 0},
		{0.3, -0.4, 0.5},
		{-1, 1, 1},
		{0, 0, 3}, // just under π in magnitude
	}
	for _, v := range vectors {
		q := FromRotationVector(v)
		if !q.IsUnit() {
			t.Errorf("FromRotationVector(%v) not unit", v)
			continue
		}
		got, err := q.ToRotationVector()
		if err != nil {
			t.Fatalf("ToRotationVector: %v", err)
		}
		if !vecNear(got, v, 1e-9) {
			t.Errorf("round trip of %v = %v", v, got)
		}
	}
}

func TestRotationVectorEdgeCases(t *testing.T) {
	t.Run("tiny angle collapses to identity", func(t *testing.T) {
		if got := FromRotationVector(V3(1e-11, 0, 0)); got != Identity {
			t.Errorf("FromRotationVector(tiny) = %v, want identity", got)
		}
	})

	t.Run("identity converts to zero vector", func(t *testing.T) {
		got, err := Identity.ToRotationVector()
		if err != nil {
			t.Fatalf("ToRotationVector: %v", err)
		}
		if got != (Vec3{}) {
			t.Errorf("identity rotation vector = %v, want zero", got)
		}
	})

	t.Run("non-unit rejected", func(t *testing.T) {
		if _, err := (Quaternion{2, 0, 0, 0}).ToRotationVector(); !errors.Is(err, ErrNotUnit) {
			t.Errorf("non-unit error = %v, want ErrNotUnit", err)
		}
	})
}

func TestGeodesicDistance(t *testing.T) {
	q1 := mustNormalize(t, Quaternion{1, 1, 0, 0})
	q2 := mustNormalize(t, Quaternion{1, 0, 1, 0})

	t.Run("self distance is zero", func(t *testing.T) {
		d, err := q1.GeodesicDistance(q1)
		if err != nil {
			t.Fatalf("GeodesicDistance: %v", err)
		}
		if d != 0 {
			t.Errorf("d(q, q) = %v, want 0", d)
		}
	})

	t.Run("antipodal quaternions coincide", func(t *testing.T) {
		// q and -q are the same rotation under the shortest-arc form.
		d, err := q1.GeodesicDistance(q1.Neg())
		if err != nil {
			t.Fatalf("GeodesicDistance: %v", err)
		}
		if d != 0 {
			t.Errorf("d(q, -q) = %v, want 0", d)
		}
	})

	t.Run("symmetric and bounded", func(t *testing.T) {
		units := []Quaternion{Identity, I, J, K, q1, q2}
		for _, a := range units {
			for _, b := range units {
				dab, err := a.GeodesicDistance(b)
				if err != nil {
					t.Fatalf("GeodesicDistance: %v", err)
				}
				dba, err := b.GeodesicDistance(a)
				if err != nil {
					t.Fatalf("GeodesicDistance: %v", err)
				}
				if dab != dba {
					t.Errorf("d(%v, %v) = %v but d reversed = %v", a, b, dab, dba)
				}
				if dab < 0 || dab > math.Pi+1e-12 {
					t.Errorf("d(%v, %v) = %v outside [0, π]", a, b, dab)
				}
			}
		}
	})

	t.Run("orthogonal quaternions", func(t *testing.T) {
		d, err := Identity.GeodesicDistance(I)
		if err != nil {
			t.Fatalf("GeodesicDistance: %v", err)
		}
		if !scalar.EqualWithinAbs(d, math.Pi, 1e-12) {
			t.Errorf("d(1, i) = %v, want π", d)
		}
	})

	t.Run("non-unit rejected", func(t *testing.T) {
		if _, err := (Quaternion{2, 0, 0, 0}).GeodesicDistance(Identity); !errors.Is(err, ErrNotUnit) {
			t.Errorf("error = %v, want ErrNotUnit", err)
		}
		if _, err := Identity.GeodesicDistance(Quaternion{2, 0, 0, 0}); !errors.Is(err, ErrNotUnit) {
			t.Errorf("error = %v, want ErrNotUnit", err)
		}
	})
}

func TestGeodesicRotation(t *testing.T) {
	q := mustNormalize(t, Quaternion{1, 1, 0, 0})
	target := mustNormalize(t, Quaternion{1, 0, 0, 1})

	r, err := q.GeodesicRotation(target)
	if err != nil {
		t.Fatalf("GeodesicRotation: %v", err)
	}

	// Applying the rotation to q must land on target.
	if got := q.Mul(r); !quatNear(got, target, 1e-9) {
		t.Errorf("q * geodesicRotation = %v, want %v", got, target)
	}

	// Rotation from a quaternion to itself is the identity.
	self, err := q.GeodesicRotation(q)
	if err != nil {
		t.Fatalf("GeodesicRotation: %v", err)
	}
	if !quatNear(self, Identity, 1e-9) {
		t.Errorf("self rotation = %v, want identity", self)
	}

	if _, err := (Quaternion{2, 0, 0, 0}).GeodesicRotation(Identity); !errors.Is(err, ErrNotUnit) {
		t.Errorf("non-unit error = %v, want ErrNotUnit", err)
	}
}

func TestSlerp(t *testing.T) {
	a := mustNormalize(t, Quaternion{1, 1, 0, 0})
	b := mustNormalize(t, Quaternion{1, 0, 1, 0})

	t.Run("boundaries", func(t *testing.T) {
		got, err := Slerp(a, b, 0)
		if err != nil {
			t.Fatalf("Slerp: %v", err)
		}
		if !quatNear(got, a, 1e-12) {
			t.Errorf("slerp(a, b, 0) = %v, want a", got)
		}

		got, err = Slerp(a, b, 1)
		if err != nil {
			t.Fatalf("Slerp: %v", err)
		}
		if !quatNear(got, b, 1e-12) {
			t.Errorf("slerp(a, b, 1) = %v, want b", got)
		}
	})

	t.Run("midpoint is unit and equidistant", func(t *testing.T) {
		mid, err := Slerp(a, b, 0.5)
		if err != nil {
			t.Fatalf("Slerp: %v", err)
		}
		if !mid.IsUnit() {
			t.Errorf("midpoint not unit: norm = %v", mid.Norm())
		}
		da, err := mid.GeodesicDistance(a)
		if err != nil {
			t.Fatalf("GeodesicDistance: %v", err)
		}
		db, err := mid.GeodesicDistance(b)
		if err != nil {
			t.Fatalf("GeodesicDistance: %v", err)
		}
		if !scalar.EqualWithinAbs(da, db, 1e-9) {
			t.Errorf("midpoint distances %v and %v differ", da, db)
		}
	})

	t.Run("shortest arc flips negated endpoint", func(t *testing.T) {
		got, err := Slerp(a, b.Neg(), 1)
		if err != nil {
			t.Fatalf("Slerp: %v", err)
		}
		// The endpoint is reached as b (flipped back), not -b.
		if !quatNear(got, b, 1e-12) {
			t.Errorf("slerp(a, -b, 1) = %v, want %v", got, b)
		}
	})

	t.Run("near-parallel falls back to lerp", func(t *testing.T) {
		c := mustNormalize(t, Quaternion{1, 1e-4, 0, 0})
		got, err := Slerp(Identity, c, 0.5)
		if err != nil {
			t.Fatalf("Slerp: %v", err)
		}
		if !got.IsUnit() {
			t.Errorf("near-parallel slerp not unit: norm = %v", got.Norm())
		}
	})

	t.Run("out of range parameter", func(t *testing.T) {
		if _, err := Slerp(a, b, -0.1); err == nil {
			t.Error("slerp(a, b, -0.1) succeeded, want error")
		}
		if _, err := Slerp(a, b, 1.1); err == nil {
			t.Error("slerp(a, b, 1.1) succeeded, want error")
		}
	})
}
