// Package perceptron implements a binary classifier over 3D orientations
// that learns unit-quaternion rotation weights instead of scalar weights.
//
// The perceptron holds two weights, bias and action, and predicts
// bias * input * action. Training decomposes each sample's error rotation
// into per-weight components in the tangent space, aggregates them across
// the batch through the exponential map, and moves the weights against a
// step-size-contracted fraction of the aggregated update.
package perceptron

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hkubica/quatnet/pkg/quat"
)

// initSigma is the standard deviation of the Gaussian perturbation around
// the identity used to draw initial weights.
const initSigma = 0.05

var (
	// ErrInvalidLabel reports a label outside {0, 1}.
	ErrInvalidLabel = errors.New("label must be 0 or 1")

	// ErrBatchMismatch reports input and label sequences of different
	// lengths.
	ErrBatchMismatch = errors.New("inputs and labels must have equal length")

	// ErrInvalidLearningRate reports a non-positive learning rate.
	ErrInvalidLearningRate = errors.New("learning rate must be positive")
)

// gradientFields pairs the aggregated rotation updates computed from one
// training batch, consumed immediately by the weight update.
type gradientFields struct {
	biasGradient   quat.Quaternion
	actionGradient quat.Quaternion
}

// Perceptron is a rotation-weight binary classifier. A single instance is
// not safe for concurrent mutation; Step must be serialized per instance.
type Perceptron struct {
	bias   quat.Quaternion
	action quat.Quaternion
	rule   updateRule
	rng    *rand.Rand
}

// Option configures a Perceptron at construction.
type Option func(*Perceptron) error

// WithAdaptiveRule selects the single-weight update variant: only the bias
// rotation is learned (the action weight is pinned to the identity) and
// updates are error-distance-scaled rotation vectors accumulated directly,
// skipping the basis decomposition. The learning rate must be positive.
func WithAdaptiveRule(learningRate float64) Option {
	return func(p *Perceptron) error {
		if learningRate <= 0 {
			return fmt.Errorf("%w: got %v", ErrInvalidLearningRate, learningRate)
		}
		p.rule = adaptiveRule{learningRate: learningRate}
		return nil
	}
}

// New creates a perceptron with weights drawn near the identity from a
// generator seeded with seed. The same seed always yields identical
// weights. The default update rule is the two-weight basis decomposition.
func New(seed uint64, opts ...Option) (*Perceptron, error) {
	p := &Perceptron{
		rule: decompositionRule{},
		rng:  rand.New(rand.NewSource(seed)),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	noise := distuv.Normal{Mu: 0, Sigma: initSigma, Src: p.rng}
	var err error
	if p.bias, err = randomUnitNearIdentity(noise); err != nil {
		return nil, fmt.Errorf("init bias: %w", err)
	}
	if _, single := p.rule.(adaptiveRule); single {
		p.action = quat.Identity
		return p, nil
	}
	if p.action, err = randomUnitNearIdentity(noise); err != nil {
		return nil, fmt.Errorf("init action: %w", err)
	}
	return p, nil
}

// randomUnitNearIdentity draws identity + N(0, sigma²) per component,
// normalized to unit length.
func randomUnitNearIdentity(noise distuv.Normal) (quat.Quaternion, error) {
	q, err := quat.New(1+noise.Rand(), noise.Rand(), noise.Rand(), noise.Rand())
	if err != nil {
		return quat.Quaternion{}, err
	}
	return q.Normalize()
}

// Bias returns the current bias rotation weight.
func (p *Perceptron) Bias() quat.Quaternion {
	return p.bias
}

// Action returns the current action rotation weight.
func (p *Perceptron) Action() quat.Quaternion {
	return p.action
}

// Forward computes bias * input * action. The input must be a unit
// quaternion; the product of three unit quaternions is unit by
// construction, so the output is not renormalized.
func (p *Perceptron) Forward(input quat.Quaternion) (quat.Quaternion, error) {
	if !input.IsUnit() {
		return quat.Quaternion{}, fmt.Errorf("forward: input %w", quat.ErrNotUnit)
	}
	return p.bias.Mul(input).Mul(p.action), nil
}

// Classify predicts the binary label of input by comparing the geodesic
// distance of the forward output to the two target orientations. Ties
// break toward label 0.
func (p *Perceptron) Classify(input quat.Quaternion) (int, error) {
	predicted, err := p.Forward(input)
	if err != nil {
		return 0, fmt.Errorf("classify: %w", err)
	}

	target0, _ := labelTarget(0)
	target1, _ := labelTarget(1)

	d0, err := predicted.GeodesicDistance(target0)
	if err != nil {
		return 0, fmt.Errorf("classify: %w", err)
	}
	d1, err := predicted.GeodesicDistance(target1)
	if err != nil {
		return 0, fmt.Errorf("classify: %w", err)
	}

	if d0 <= d1 {
		return 0, nil
	}
	return 1, nil
}

// Step runs one batch training update. Validation is all-or-nothing: any
// invalid input, label, or length mismatch fails before either weight is
// touched. An empty batch is a no-op.
func (p *Perceptron) Step(inputs []quat.Quaternion, labels []int) error {
	if len(inputs) != len(labels) {
		return fmt.Errorf("step: %w: %d inputs, %d labels", ErrBatchMismatch, len(inputs), len(labels))
	}

	targets := make([]quat.Quaternion, len(labels))
	for i, label := range labels {
		t, err := labelTarget(label)
		if err != nil {
			return fmt.Errorf("step: sample %d: %w", i, err)
		}
		targets[i] = t
	}

	predicted := make([]quat.Quaternion, len(inputs))
	for i, input := range inputs {
		out, err := p.Forward(input)
		if err != nil {
			return fmt.Errorf("step: sample %d: %w", i, err)
		}
		predicted[i] = out
	}

	grads, err := p.rule.gradients(p, inputs, predicted, targets)
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	return p.apply(grads)
}

// apply moves both weights against the aggregated gradients: the bias by
// left multiplication (world frame), the action by right multiplication
// (local frame).
func (p *Perceptron) apply(g gradientFields) error {
	biasInv, err := g.biasGradient.Inverse()
	if err != nil {
		return fmt.Errorf("apply bias gradient: %w", err)
	}
	actionInv, err := g.actionGradient.Inverse()
	if err != nil {
		return fmt.Errorf("apply action gradient: %w", err)
	}
	p.bias = biasInv.Mul(p.bias)
	p.action = p.action.Mul(actionInv)
	return nil
}

// labelTarget maps a binary label to its target orientation: the identity
// for label 0, a half-turn around the z-axis for label 1.
func labelTarget(label int) (quat.Quaternion, error) {
	switch label {
	case 0:
		return quat.Identity, nil
	case 1:
		return quat.FromAxisAngle(math.Pi, quat.V3(0, 0, 1))
	default:
		return quat.Quaternion{}, fmt.Errorf("%w: got %d", ErrInvalidLabel, label)
	}
}
