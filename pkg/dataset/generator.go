package dataset

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrNegativeDimensions reports a negative hypercube dimensionality.
	ErrNegativeDimensions = errors.New("number of dimensions must be non-negative")

	// ErrInvalidCardinality reports a non-positive blob cardinality.
	ErrInvalidCardinality = errors.New("blob cardinality must be positive")

	// ErrInvalidVariance reports an empty or negative blob variance.
	ErrInvalidVariance = errors.New("blob variance must be non-empty and non-negative")
)

// Strategy generates labeled data points for a given dimensionality.
// Implementations with random elements must be seeded so the same seed
// yields the same dataset.
type Strategy interface {
	Generate(numDimensions int) ([]DataPoint, error)
}

// ExactXOR generates the 2^N vertices of the N-dimensional hypercube,
// labeled by the parity of their 1-coordinates. In 2D this is the classic
// XOR dataset: (0,0)→0, (0,1)→1, (1,0)→1, (1,1)→0.
type ExactXOR struct{}

// Generate returns the hypercube vertices in index order, from (0,...,0)
// to (1,...,1), with bit i of the vertex index as coordinate i.
func (ExactXOR) Generate(numDimensions int) ([]DataPoint, error) {
	if numDimensions < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativeDimensions, numDimensions)
	}

	numVertices := 1 << numDimensions
	points := make([]DataPoint, 0, numVertices)
	for v := 0; v < numVertices; v++ {
		coords := make([]float64, numDimensions)
		ones := 0
		for i := range coords {
			if (v>>i)&1 == 1 {
				coords[i] = 1
				ones++
			}
		}
		points = append(points, DataPoint{Coordinates: coords, Label: ones % 2})
	}
	return points, nil
}

// FuzzyXOR generates Gaussian point clouds around each hypercube vertex.
// Every point in a cloud inherits the vertex's parity label, so the XOR
// structure survives under noise. Generation is deterministic per seed.
type FuzzyXOR struct {
	cardinality int
	variance    []float64
	rng         *rand.Rand
}

// NewFuzzyXOR creates a fuzzy XOR strategy producing cardinality points
// around each vertex, perturbed per dimension by Gaussian noise with the
// given variance.
func NewFuzzyXOR(cardinality int, variance []float64, seed uint64) (*FuzzyXOR, error) {
	if cardinality <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCardinality, cardinality)
	}
	if len(variance) == 0 {
		return nil, ErrInvalidVariance
	}
	for _, v := range variance {
		if v < 0 {
			return nil, fmt.Errorf("%w: got %v", ErrInvalidVariance, v)
		}
	}
	return &FuzzyXOR{
		cardinality: cardinality,
		variance:    append([]float64(nil), variance...),
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// Generate returns 2^numDimensions * cardinality points. The variance
// must cover every dimension.
func (f *FuzzyXOR) Generate(numDimensions int) ([]DataPoint, error) {
	if numDimensions != len(f.variance) {
		return nil, fmt.Errorf("%w: %d variances for %d dimensions", ErrInvalidVariance, len(f.variance), numDimensions)
	}

	vertices, err := ExactXOR{}.Generate(numDimensions)
	if err != nil {
		return nil, err
	}

	points := make([]DataPoint, 0, len(vertices)*f.cardinality)
	for _, vertex := range vertices {
		for i := 0; i < f.cardinality; i++ {
			points = append(points, DataPoint{
				Coordinates: f.perturb(vertex.Coordinates),
				Label:       vertex.Label,
			})
		}
	}
	return points, nil
}

// perturb samples each coordinate from N(mean, variance) for its
// dimension.
func (f *FuzzyXOR) perturb(mean []float64) []float64 {
	coords := make([]float64, len(mean))
	for i, m := range mean {
		coords[i] = distuv.Normal{Mu: m, Sigma: math.Sqrt(f.variance[i]), Src: f.rng}.Rand()
	}
	return coords
}
