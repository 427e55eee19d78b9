package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/hkubica/quatnet/pkg/quat"
)

// zeroCoordinateThreshold is the magnitude below which a coordinate is
// treated as zero and remapped, so that hypercube vertices land on
// distinct orientations.
const zeroCoordinateThreshold = 1e-10

// ErrTooFewDimensions reports a point with fewer than two coordinates.
var ErrTooFewDimensions = errors.New("orientation encoding needs at least two coordinates")

// Orientation encodes a 2D data point as a unit-quaternion input for the
// perceptron. Zero coordinates are remapped to -1 (otherwise the (0,0)
// and (0,1) vertices would collapse onto degenerate axes), a fixed z
// offset keeps every encoding off the equator, and the vector quaternion
// (0, x, y, 0.5) is normalized to unit length.
func Orientation(p DataPoint) (quat.Quaternion, error) {
	if p.NumDimensions() < 2 {
		return quat.Quaternion{}, fmt.Errorf("%w: got %d", ErrTooFewDimensions, p.NumDimensions())
	}

	x := p.Coordinates[0]
	if math.Abs(x) < zeroCoordinateThreshold {
		x = -1
	}
	y := p.Coordinates[1]
	if math.Abs(y) < zeroCoordinateThreshold {
		y = -1
	}

	q, err := quat.New(0, x, y, 0.5)
	if err != nil {
		return quat.Quaternion{}, fmt.Errorf("encode orientation: %w", err)
	}
	return q.Normalize()
}

// Orientations encodes every point of a dataset and returns the
// orientations alongside their labels, ready for Perceptron.Step.
func Orientations(d *Dataset) ([]quat.Quaternion, []int, error) {
	inputs := make([]quat.Quaternion, len(d.Points))
	labels := make([]int, len(d.Points))
	for i, p := range d.Points {
		q, err := Orientation(p)
		if err != nil {
			return nil, nil, fmt.Errorf("point %d: %w", i, err)
		}
		inputs[i] = q
		labels[i] = p.Label
	}
	return inputs, labels, nil
}
