package perceptron

import (
	"errors"
	"fmt"

	"github.com/hkubica/quatnet/pkg/quat"
)

// adaptiveSkipThreshold is the error distance below which a sample
// contributes nothing under the adaptive rule.
const adaptiveSkipThreshold = 1e-6

// decompositionStepSize contracts the aggregated update rotation before it
// is applied. The solved coefficients reconstruct the full error each
// batch, so applying them whole keeps jumping over the minimum; the
// contraction turns that into a descent.
const decompositionStepSize = 0.1

// updateRule computes the aggregated gradient pair for one batch. Both
// rules receive the full batch so aggregation stays inside the rule.
type updateRule interface {
	gradients(p *Perceptron, inputs, predicted, targets []quat.Quaternion) (gradientFields, error)
}

// decompositionRule is the two-weight update: each sample's error rotation
// is decomposed over the basis of the current bias, input, and action
// rotation vectors, reconstructed into per-weight update quaternions,
// aggregated across the batch through the exponential map, and contracted
// by the fixed step size.
type decompositionRule struct{}

func (decompositionRule) gradients(p *Perceptron, inputs, predicted, targets []quat.Quaternion) (gradientFields, error) {
	biasUpdates := make([]quat.Quaternion, 0, len(inputs))
	actionUpdates := make([]quat.Quaternion, 0, len(inputs))

	for i := range inputs {
		errRot, err := predicted[i].GeodesicRotation(targets[i])
		if err != nil {
			return gradientFields{}, fmt.Errorf("sample %d: %w", i, err)
		}

		biasUpdate, actionUpdate, err := decomposeError(p.bias, inputs[i], p.action, errRot)
		if errors.Is(err, ErrSingularBasis) {
			continue
		}
		if err != nil {
			return gradientFields{}, fmt.Errorf("sample %d: %w", i, err)
		}
		biasUpdates = append(biasUpdates, biasUpdate)
		actionUpdates = append(actionUpdates, actionUpdate)
	}

	biasGrad, err := sumExp(biasUpdates)
	if err != nil {
		return gradientFields{}, fmt.Errorf("aggregate bias updates: %w", err)
	}
	actionGrad, err := sumExp(actionUpdates)
	if err != nil {
		return gradientFields{}, fmt.Errorf("aggregate action updates: %w", err)
	}
	if biasGrad, err = biasGrad.Pow(decompositionStepSize); err != nil {
		return gradientFields{}, fmt.Errorf("contract bias update: %w", err)
	}
	if actionGrad, err = actionGrad.Pow(decompositionStepSize); err != nil {
		return gradientFields{}, fmt.Errorf("contract action update: %w", err)
	}
	return gradientFields{biasGradient: biasGrad, actionGradient: actionGrad}, nil
}

// decomposeError attributes one sample's error rotation to the two
// weights. The error's tangent vector is solved over the basis of the
// bias, input, and action tangent vectors; each weight's update then
// composes the conjugates of the other basis rotations and the error,
// raised to the solved fractional coefficients, normalized back to unit.
func decomposeError(bias, input, action, errRot quat.Quaternion) (biasUpdate, actionUpdate quat.Quaternion, err error) {
	vBias, err := tangent(bias)
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}
	vInput, err := tangent(input)
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}
	vAction, err := tangent(action)
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}
	vErr, err := tangent(errRot)
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}

	c, err := solveBasis(vBias, vInput, vAction, vErr)
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}
	cBias, cInput, cAction := c[0], c[1], c[2]

	inputPart, err := input.Conj().Pow(cInput)
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}

	actionPart, err := action.Conj().Pow(cAction)
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}
	errBiasPart, err := errRot.Pow(cBias)
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}
	biasUpdate, err = inputPart.Mul(actionPart).Mul(errBiasPart).Normalize()
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}

	biasPart, err := bias.Conj().Pow(cBias)
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}
	errActionPart, err := errRot.Pow(cAction)
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}
	actionUpdate, err = inputPart.Mul(biasPart).Mul(errActionPart).Normalize()
	if err != nil {
		return quat.Quaternion{}, quat.Quaternion{}, err
	}

	return biasUpdate, actionUpdate, nil
}

// tangent returns the rotation's tangent-space vector, Log().Vector().
func tangent(q quat.Quaternion) (quat.Vec3, error) {
	l, err := q.Log()
	if err != nil {
		return quat.Vec3{}, err
	}
	return l.Vector(), nil
}

// sumExp combines per-sample update rotations by summing their rotation
// vectors and mapping the sum back through the exponential map. The sum
// is deliberately not averaged: the update magnitude scales with batch
// size, mirroring gradient accumulation. An empty batch yields the
// identity; a single update passes through unchanged.
func sumExp(updates []quat.Quaternion) (quat.Quaternion, error) {
	switch len(updates) {
	case 0:
		return quat.Identity, nil
	case 1:
		return updates[0], nil
	}
	var sum quat.Vec3
	for _, u := range updates {
		v, err := u.ToRotationVector()
		if err != nil {
			return quat.Quaternion{}, err
		}
		sum = sum.Add(v)
	}
	return quat.FromRotationVector(sum), nil
}

// adaptiveRule is the single-weight update: no decomposition, just the
// error's tangent vector scaled by learningRate times the geodesic error
// distance, accumulated across the batch. The action gradient stays at
// the identity so the pinned action weight never moves.
type adaptiveRule struct {
	learningRate float64
}

func (r adaptiveRule) gradients(p *Perceptron, inputs, predicted, targets []quat.Quaternion) (gradientFields, error) {
	var sum quat.Vec3

	for i := range predicted {
		dist, err := predicted[i].GeodesicDistance(targets[i])
		if err != nil {
			return gradientFields{}, fmt.Errorf("sample %d: %w", i, err)
		}
		if dist < adaptiveSkipThreshold {
			continue
		}

		predInv, err := predicted[i].Inverse()
		if err != nil {
			return gradientFields{}, fmt.Errorf("sample %d: %w", i, err)
		}
		errRot := targets[i].Mul(predInv)
		vErr, err := tangent(errRot)
		if err != nil {
			return gradientFields{}, fmt.Errorf("sample %d: %w", i, err)
		}
		sum = sum.Add(vErr.Scale(r.learningRate * dist))
	}

	return gradientFields{
		biasGradient:   quat.FromRotationVector(sum),
		actionGradient: quat.Identity,
	}, nil
}
