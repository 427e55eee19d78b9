// quatnet - quaternion rotation perceptron
//
// Generate XOR-style datasets and train a rotation-weight binary
// classifier on them:
//
//	quatnet generate exact -d 2 -o exact.csv
//	quatnet generate fuzzy -d 2 -c 50 -v 0.05 -s 7 -o fuzzy.csv
//	quatnet train -d exact.csv --epochs 100 --seed 42
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"github.com/hkubica/quatnet/pkg/dataset"
	"github.com/hkubica/quatnet/pkg/perceptron"
	"github.com/hkubica/quatnet/pkg/quat"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quatnet",
		Short:         "Quaternion rotation perceptron for XOR-style datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(generateCmd(), trainCmd())
	return root
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an XOR dataset",
	}
	cmd.AddCommand(exactCmd(), fuzzyCmd())
	return cmd
}

func exactCmd() *cobra.Command {
	var (
		numDimensions int
		outputPath    string
	)

	cmd := &cobra.Command{
		Use:   "exact",
		Short: "Generate the exact hypercube-vertex XOR dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.FromStrategy(dataset.ExactXOR{}, numDimensions)
			if err != nil {
				return err
			}
			if err := ds.ExportCSV(outputPath, 0); err != nil {
				return err
			}
			fmt.Printf("Generated exact XOR dataset with %d dimensions, saved to %s\n", numDimensions, outputPath)
			return nil
		},
	}

	cmd.Flags().IntVarP(&numDimensions, "num-dimensions", "d", 0, "Number of dimensions")
	cmd.Flags().StringVarP(&outputPath, "output-path", "o", "exact.csv", "Output CSV file path")
	_ = cmd.MarkFlagRequired("num-dimensions")
	return cmd
}

func fuzzyCmd() *cobra.Command {
	var (
		numDimensions   int
		blobCardinality int
		blobVariance    float64
		seed            uint64
		outputPath      string
	)

	cmd := &cobra.Command{
		Use:   "fuzzy",
		Short: "Generate fuzzy XOR data clouds around the hypercube vertices",
		RunE: func(cmd *cobra.Command, args []string) error {
			variance := make([]float64, numDimensions)
			for i := range variance {
				variance[i] = blobVariance
			}
			strategy, err := dataset.NewFuzzyXOR(blobCardinality, variance, seed)
			if err != nil {
				return err
			}
			ds, err := dataset.FromStrategy(strategy, numDimensions)
			if err != nil {
				return err
			}
			if err := ds.ExportCSV(outputPath, 0); err != nil {
				return err
			}
			fmt.Printf("Generated fuzzy XOR dataset with %d dimensions, saved to %s\n", numDimensions, outputPath)
			return nil
		},
	}

	cmd.Flags().IntVarP(&numDimensions, "num-dimensions", "d", 0, "Number of dimensions")
	cmd.Flags().IntVarP(&blobCardinality, "blob-cardinality", "c", 0, "Number of points per vertex cloud")
	cmd.Flags().Float64VarP(&blobVariance, "blob-variance", "v", 0, "Blob variance")
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "Random seed")
	cmd.Flags().StringVarP(&outputPath, "output-path", "o", "fuzzy.csv", "Output CSV file path")
	_ = cmd.MarkFlagRequired("num-dimensions")
	_ = cmd.MarkFlagRequired("blob-cardinality")
	_ = cmd.MarkFlagRequired("blob-variance")
	return cmd
}

func trainCmd() *cobra.Command {
	var (
		dataPath     string
		epochs       int
		seed         uint64
		adaptive     bool
		learningRate float64
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the quaternion perceptron on a CSV dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []perceptron.Option
			if adaptive {
				opts = append(opts, perceptron.WithAdaptiveRule(learningRate))
			}
			return train(dataPath, epochs, seed, opts...)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "exact.csv", "Input dataset file path")
	cmd.Flags().IntVar(&epochs, "epochs", 100, "Number of training epochs")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed for weight initialization")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "Use the single-weight adaptive update rule")
	cmd.Flags().Float64Var(&learningRate, "rate", 0.003, "Learning rate for the adaptive rule")
	return cmd
}

func train(dataPath string, epochs int, seed uint64, opts ...perceptron.Option) error {
	fmt.Printf("Loading dataset from CSV: %s\n", dataPath)
	ds, err := dataset.FromCSV(dataPath)
	if err != nil {
		return err
	}
	fmt.Printf("Dataset loaded: %d samples, %d dimensions\n", ds.Size(), ds.NumDimensions)

	inputs, labels, err := dataset.Orientations(ds)
	if err != nil {
		return err
	}

	p, err := perceptron.New(seed, opts...)
	if err != nil {
		return err
	}
	fmt.Printf("Initial bias rotation: %v\n", p.Bias())
	fmt.Printf("Initial action rotation: %v\n", p.Action())

	fmt.Println("\nStarting training loop...")
	rng := rand.New(rand.NewSource(seed))
	for epoch := 0; epoch < epochs; epoch++ {
		shufflePairs(rng, inputs, labels)
		if err := p.Step(inputs, labels); err != nil {
			return fmt.Errorf("epoch %d: %w", epoch, err)
		}

		if epoch%10 == 0 {
			accuracy, meanError, err := evaluate(p, inputs, labels)
			if err != nil {
				return fmt.Errorf("epoch %d: %w", epoch, err)
			}
			fmt.Printf("Epoch %3d: Training Accuracy: %.2f%%, Average Error Magnitude: %.6f\n",
				epoch, accuracy*100, meanError)
		}
	}

	fmt.Println("\nTraining completed!")
	fmt.Printf("Final bias rotation: %v\n", p.Bias())
	fmt.Printf("Final action rotation: %v\n", p.Action())

	fmt.Println("\nTesting on first few samples:")
	for i := 0; i < min(5, len(inputs)); i++ {
		predicted, err := p.Classify(inputs[i])
		if err != nil {
			return err
		}
		fmt.Printf("Sample %d: Input=(%.2f, %.2f), Target=%d, Predicted=%d\n",
			i, inputs[i].X, inputs[i].Y, labels[i], predicted)
	}
	return nil
}

// shufflePairs permutes inputs and labels with the same permutation so
// sample/label pairing survives the shuffle.
func shufflePairs(rng *rand.Rand, inputs []quat.Quaternion, labels []int) {
	rng.Shuffle(len(inputs), func(i, j int) {
		inputs[i], inputs[j] = inputs[j], inputs[i]
		labels[i], labels[j] = labels[j], labels[i]
	})
}

// evaluate returns the training accuracy and the mean geodesic error
// magnitude over the given samples.
func evaluate(p *perceptron.Perceptron, inputs []quat.Quaternion, labels []int) (accuracy, meanError float64, err error) {
	if len(inputs) == 0 {
		return 0, 0, nil
	}

	target0 := quat.Identity
	target1, err := quat.FromAxisAngle(math.Pi, quat.V3(0, 0, 1))
	if err != nil {
		return 0, 0, err
	}

	correct := 0
	totalError := 0.0
	for i, input := range inputs {
		predicted, err := p.Classify(input)
		if err != nil {
			return 0, 0, err
		}
		if predicted == labels[i] {
			correct++
		}

		out, err := p.Forward(input)
		if err != nil {
			return 0, 0, err
		}
		target := target0
		if labels[i] == 1 {
			target = target1
		}
		dist, err := out.GeodesicDistance(target)
		if err != nil {
			return 0, 0, err
		}
		totalError += dist
	}
	return float64(correct) / float64(len(inputs)), totalError / float64(len(inputs)), nil
}
