package perceptron

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hkubica/quatnet/pkg/quat"
)

// ErrSingularBasis reports that the three basis rotation vectors are
// linearly dependent (coplanar, or one of them zero), so the error
// rotation cannot be attributed to the weights. During training this is a
// per-sample skip condition, not a fatal error.
var ErrSingularBasis = errors.New("singular rotation basis")

// solveBasis solves for the coefficients (cBias, cInput, cAction) that
// express rhs as cBias*vBias + cInput*vInput + cAction*vAction, using an
// LU factorization of the basis matrix. Exactly singular and severely
// ill-conditioned bases both surface as ErrSingularBasis.
func solveBasis(vBias, vInput, vAction, rhs quat.Vec3) ([3]float64, error) {
	a := mat.NewDense(3, 3, []float64{
		vBias.X, vInput.X, vAction.X,
		vBias.Y, vInput.Y, vAction.Y,
		vBias.Z, vInput.Z, vAction.Z,
	})
	b := mat.NewVecDense(3, []float64{rhs.X, rhs.Y, rhs.Z})

	var lu mat.LU
	lu.Factorize(a)

	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return [3]float64{}, fmt.Errorf("%w: %v", ErrSingularBasis, err)
	}
	return [3]float64{x.AtVec(0), x.AtVec(1), x.AtVec(2)}, nil
}
