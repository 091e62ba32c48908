// Package main provides the Ansatz ML Framework CLI.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ansatz-ml/ansatz/backend/statevector"
	"github.com/ansatz-ml/ansatz/config"
	"github.com/ansatz-ml/ansatz/dataset"
	"github.com/ansatz-ml/ansatz/snapshot"
	"github.com/ansatz-ml/ansatz/train"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("Ansatz ML Framework %s\n", version)
	case "train":
		err = runTrain(os.Args[2:])
	case "predict":
		err = runPredict(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "ansatz: unrecognized command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ansatz: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Ansatz ML Framework - Automated Quantum Neural Networks in Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train    -config run.yaml -data train.csv [-val-fraction 0.2] [-out model.ansz]")
	fmt.Println("  predict  -model model.ansz -data input.csv [-proba]")
	fmt.Println("  inspect  -model model.ansz")
	fmt.Println("  version  Show version")
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", "", "run configuration (YAML)")
	dataPath := fs.String("data", "", "training data CSV: feature columns then target columns")
	targetCols := fs.Int("targets", 1, "number of trailing target columns")
	valFraction := fs.Float64("val-fraction", 0, "fraction of rows held out for validation")
	outPath := fs.String("out", "model.ansz", "where to write the trained model")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" || *dataPath == "" {
		return fmt.Errorf("train requires -config and -data")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	features, targets, err := readCSV(*dataPath, *targetCols)
	if err != nil {
		return err
	}

	trainer, err := train.FromConfig(cfg, statevector.New())
	if err != nil {
		return err
	}

	trainF, trainT := features, targets
	var val dataset.Loader
	if *valFraction > 0 {
		var valF, valT [][]float64
		trainF, trainT, valF, valT, err = dataset.Split(features, targets, *valFraction, nil)
		if err != nil {
			return err
		}
		val, err = dataset.NewInMemory(valF, valT, cfg.BatchSize, nil)
		if err != nil {
			return err
		}
	}
	loader, err := dataset.NewInMemory(trainF, trainT, cfg.BatchSize, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := trainer.Fit(ctx, loader, val)
	if result != nil {
		for _, m := range result.History {
			if val != nil {
				fmt.Printf("epoch %3d  loss %.6f  val %.6f  |grad| %.4f  lr %g\n",
					m.Epoch, m.Loss, m.ValLoss, m.GradNorm, m.LR)
			} else {
				fmt.Printf("epoch %3d  loss %.6f  |grad| %.4f  lr %g\n",
					m.Epoch, m.Loss, m.GradNorm, m.LR)
			}
		}
		fmt.Printf("status: %s  best loss: %.6f\n", result.Status, result.State.BestLoss)
	}
	if err != nil {
		return err
	}

	if err := snapshot.Save(trainer.Snapshot(), *outPath); err != nil {
		return err
	}
	fmt.Printf("model written to %s\n", *outPath)
	return nil
}

func runPredict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	modelPath := fs.String("model", "", "trained model (.ansz)")
	dataPath := fs.String("data", "", "input CSV, feature columns only")
	proba := fs.Bool("proba", false, "emit class probabilities instead of labels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelPath == "" || *dataPath == "" {
		return fmt.Errorf("predict requires -model and -data")
	}

	snap, err := snapshot.Load(*modelPath)
	if err != nil {
		return err
	}
	model, err := train.FromSnapshot(snap, statevector.New())
	if err != nil {
		return err
	}
	features, _, err := readCSV(*dataPath, 0)
	if err != nil {
		return err
	}

	var rows [][]float64
	if *proba {
		rows, err = model.PredictProba(features)
	} else {
		rows, err = model.Predict(features)
	}
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	modelPath := fs.String("model", "", "trained model (.ansz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelPath == "" {
		return fmt.Errorf("inspect requires -model")
	}

	snap, err := snapshot.Load(*modelPath)
	if err != nil {
		return err
	}

	fmt.Printf("run:        %s\n", snap.Meta.RunID)
	fmt.Printf("created:    %s\n", snap.Meta.CreatedAt)
	fmt.Printf("task:       %s\n", snap.Config.Task)
	fmt.Printf("wires:      %d\n", snap.Manifest.NumWires)
	fmt.Printf("layers:     %d\n", len(snap.Manifest.Layers))
	fmt.Printf("parameters: %d\n", snap.Manifest.ParamCount())
	fmt.Printf("epoch:      %d (step %d)\n", snap.Meta.Epoch, snap.Meta.Step)
	fmt.Printf("best loss:  %g\n", snap.Meta.BestLoss)
	return nil
}

// readCSV parses rows of floats, splitting each record into features and the
// trailing targetCols target columns. Rows that fail to parse as numbers
// (e.g. a header) are skipped when they are the first record.
func readCSV(path string, targetCols int) (features, targets [][]float64, err error) {
	f, err := os.Open(path) //nolint:gosec // Data path comes from the caller.
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i, record := range records {
		row := make([]float64, len(record))
		parsed := true
		for j, field := range record {
			row[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				if i == 0 {
					parsed = false
					break
				}
				return nil, nil, fmt.Errorf("%s: row %d column %d: %w", path, i+1, j+1, err)
			}
		}
		if !parsed {
			continue
		}
		if targetCols > 0 {
			if len(row) <= targetCols {
				return nil, nil, fmt.Errorf("%s: row %d has %d columns, need more than %d target columns",
					path, i+1, len(row), targetCols)
			}
			features = append(features, row[:len(row)-targetCols])
			targets = append(targets, row[len(row)-targetCols:])
		} else {
			features = append(features, row)
		}
	}
	if len(features) == 0 {
		return nil, nil, fmt.Errorf("%s: no data rows", path)
	}
	return features, targets, nil
}
