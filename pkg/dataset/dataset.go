// Package dataset provides labeled N-dimensional points for XOR-style
// binary classification experiments: generation strategies, CSV
// import/export, and the encoding of 2D points as unit-quaternion
// orientations.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"
)

var (
	// ErrEmptyCoordinates reports a data point with no coordinates.
	ErrEmptyCoordinates = errors.New("coordinates must not be empty")

	// ErrInvalidDimensions reports a non-positive dimensionality.
	ErrInvalidDimensions = errors.New("number of dimensions must be positive")

	// ErrEmptyDataset reports an operation that needs at least one point.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrInvalidSubset reports out-of-range subset indices.
	ErrInvalidSubset = errors.New("invalid subset indices")
)

// DataPoint is an N-dimensional point with a binary label.
type DataPoint struct {
	Coordinates []float64
	Label       int
}

// NewDataPoint creates a data point, rejecting empty coordinates.
func NewDataPoint(coordinates []float64, label int) (DataPoint, error) {
	if len(coordinates) == 0 {
		return DataPoint{}, ErrEmptyCoordinates
	}
	return DataPoint{Coordinates: coordinates, Label: label}, nil
}

// NumDimensions returns the dimensionality of the point.
func (p DataPoint) NumDimensions() int {
	return len(p.Coordinates)
}

// Dataset is a container of data points sharing one dimensionality.
type Dataset struct {
	Points        []DataPoint
	NumDimensions int
}

// New creates a dataset over the given points.
func New(points []DataPoint, numDimensions int) (*Dataset, error) {
	if numDimensions <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimensions, numDimensions)
	}
	return &Dataset{Points: points, NumDimensions: numDimensions}, nil
}

// FromStrategy generates a dataset using the given strategy.
func FromStrategy(s Strategy, numDimensions int) (*Dataset, error) {
	points, err := s.Generate(numDimensions)
	if err != nil {
		return nil, fmt.Errorf("generate dataset: %w", err)
	}
	return New(points, numDimensions)
}

// FromCSV loads a dataset from a CSV file of N coordinate columns followed
// by an integer label column. Blank lines are skipped; the dimensionality
// is taken from the first row.
func FromCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv %s: %w", path, ErrEmptyDataset)
	}

	points := make([]DataPoint, 0, len(records))
	for i, record := range records {
		p, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}
		points = append(points, p)
	}
	return New(points, points[0].NumDimensions())
}

// parseRecord converts one CSV record into a data point. The last field
// is the label, everything before it a coordinate.
func parseRecord(record []string) (DataPoint, error) {
	if len(record) < 2 {
		return DataPoint{}, fmt.Errorf("want at least one coordinate and a label, got %d fields", len(record))
	}
	coords := make([]float64, len(record)-1)
	for i, field := range record[:len(record)-1] {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return DataPoint{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		coords[i] = v
	}
	label, err := strconv.Atoi(strings.TrimSpace(record[len(record)-1]))
	if err != nil {
		return DataPoint{}, fmt.Errorf("label: %w", err)
	}
	return NewDataPoint(coords, label)
}

// Size returns the number of points.
func (d *Dataset) Size() int {
	return len(d.Points)
}

// IsEmpty reports whether the dataset has no points.
func (d *Dataset) IsEmpty() bool {
	return len(d.Points) == 0
}

// Shuffle randomizes the order of the points in place using rng.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.Points), func(i, j int) {
		d.Points[i], d.Points[j] = d.Points[j], d.Points[i]
	})
}

// Subset returns the points in [start, end) as a new dataset sharing the
// underlying points.
func (d *Dataset) Subset(start, end int) (*Dataset, error) {
	if start < 0 || end > len(d.Points) || start >= end {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrInvalidSubset, start, end, len(d.Points))
	}
	return New(d.Points[start:end], d.NumDimensions)
}

// ExportCSV writes the dataset as CSV. Coordinates use the given number
// of decimal places; precision <= 0 writes the shortest exact
// representation. Exporting an empty dataset is an error.
func (d *Dataset) ExportCSV(path string, precision int) error {
	if d.IsEmpty() {
		return fmt.Errorf("export csv: %w", ErrEmptyDataset)
	}
	if precision <= 0 {
		precision = -1
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := make([]string, d.NumDimensions+1)
	for _, p := range d.Points {
		for i, c := range p.Coordinates {
			record[i] = strconv.FormatFloat(c, 'f', precision, 64)
		}
		record[d.NumDimensions] = strconv.Itoa(p.Label)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
