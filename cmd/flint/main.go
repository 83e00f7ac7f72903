// Package main provides the Flint ML Framework CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/flintml/flint/autodiff"
	"github.com/flintml/flint/backend/cpu"
	"github.com/flintml/flint/dataset"
	"github.com/flintml/flint/nn"
	"github.com/flintml/flint/optim"
	"github.com/flintml/flint/train"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Flint ML Framework %s\n", version)
			return
		case "train":
			if err := runTrain(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "train: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("Flint ML Framework - Autodiff Training for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  train      Train a classifier on synthetic Gaussian data")
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	epochs := fs.Int("epochs", 10, "Number of training epochs")
	batchSize := fs.Int("batch", 32, "Mini-batch size")
	lr := fs.Float64("lr", 0.1, "Learning rate")
	momentum := fs.Float64("momentum", 0, "SGD momentum factor")
	seed := fs.Int64("seed", 42, "Seed for data generation and weight init")
	samples := fs.Int("samples", 1024, "Number of training samples")
	features := fs.Int("features", 4, "Input feature dimension")
	classes := fs.Int("classes", 3, "Number of classes")
	hidden := fs.Int("hidden", 16, "Hidden layer width")
	logEvery := fs.Int("log-every", 10, "Steps between log lines")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend := autodiff.New(cpu.New())
	type B = *autodiff.Backend[*cpu.Backend]

	nn.Seed(*seed)
	model := nn.NewSequential[B](
		nn.NewLinear[B](*features, *hidden, backend),
		nn.NewReLU[B](),
		nn.NewLinear[B](*hidden, *classes, backend),
		nn.NewLogSoftmax[B](),
	)

	data := dataset.Gaussian(dataset.GaussianConfig{
		NumSamples:  *samples,
		NumFeatures: *features,
		NumClasses:  *classes,
		Seed:        *seed,
	})
	loader := dataset.NewLoader[B](data, *batchSize, *seed, backend)

	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
		LR:       float32(*lr),
		Momentum: float32(*momentum),
	}, backend)

	trainer := train.New[B](model, optimizer, backend)
	losses, err := trainer.Fit(ctx, loader, train.Config{
		Epochs:   *epochs,
		LogEvery: *logEvery,
	})
	if err != nil {
		return err
	}

	meanLoss, accuracy, err := trainer.Evaluate(ctx, loader)
	if err != nil {
		return err
	}

	fmt.Printf("\nTraining complete: %d epochs\n", len(losses))
	fmt.Printf("  first epoch loss: %.4f\n", losses[0])
	fmt.Printf("  final epoch loss: %.4f\n", losses[len(losses)-1])
	fmt.Printf("  eval loss: %.4f  accuracy: %.1f%%\n", meanLoss, accuracy*100)
	return nil
}
