package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fare-predict/internal/batch"
	"fare-predict/internal/collector"
	"fare-predict/internal/config"
	"fare-predict/internal/data"
	"fare-predict/internal/logging"
	"fare-predict/internal/model"
	"fare-predict/internal/predict"
	"fare-predict/internal/prompt"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var code int
	switch os.Args[1] {
	case "predict":
		code = cmdPredict(ctx, os.Args[2:])
	case "prompt":
		code = cmdPrompt(ctx, os.Args[2:])
	case "batch":
		code = cmdBatch(ctx, os.Args[2:])
	case "fetch-dataset":
		code = cmdFetchDataset(ctx, os.Args[2:])
	default:
		usage()
		code = 2
	}
	stop()
	os.Exit(code)
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli predict --model fare_prediction_model.json --lf_ms 0.8 --large_ms 0.5 --fare_lg 250 --quarter 2 --fare_low 150 --year 2010")
	fmt.Println("  cli prompt  --config config.yaml")
	fmt.Println("  cli batch   --in rows.csv --out results/predictions.csv")
	fmt.Println("  cli fetch-dataset --config config.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - every subcommand accepts --config, --model-type and --model")
	fmt.Println("  - batch adds a predicted_fare column to the input CSV")
}

// common holds the flags every subcommand shares.
type common struct {
	cfgPath   *string
	modelType *string
	modelPath *string
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		cfgPath:   fs.String("config", "", "Path to YAML config (optional)"),
		modelType: fs.String("model-type", "", "Model type: linear, tree_ensemble or remote (overrides config)"),
		modelPath: fs.String("model", "", "Model artifact path or remote base URL (overrides config)"),
	}
}

// setup loads config and logger, applying flag overrides.
func (c common) setup() (*config.Config, *zap.Logger, func(), error) {
	cfg, err := config.LoadUnchecked(*c.cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if *c.modelType != "" {
		cfg.Model.Type = *c.modelType
	}
	if *c.modelPath != "" {
		cfg.Model.Path = *c.modelPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closeLog, nil
}

func cmdPredict(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	c := commonFlags(fs)
	raw := make(map[string]*string, model.VectorLen)
	for _, f := range model.Fields {
		raw[f.Name] = fs.String(f.Name, f.FormatValue(f.Default), fieldUsage(f))
	}
	_ = fs.Parse(args)

	cfg, logger, closeLog, err := c.setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer closeLog()

	adapter := predict.Open(ctx, cfg.Model.Type, cfg.Model.Path, logger)
	if !adapter.Available() {
		fmt.Fprintln(os.Stderr, adapter.Diagnostic())
		return 1
	}

	col := collector.New()
	for _, f := range model.Fields {
		if err := col.SetString(f.Name, *raw[f.Name]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	v := col.Snapshot()
	fmt.Printf("Number of input features: %d\n", len(v))
	fmt.Printf("Feature values: %s\n", v)

	res, err := adapter.Predict(ctx, v)
	fmt.Println(res.Message())
	if err != nil {
		return 1
	}
	return 0
}

func cmdPrompt(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("prompt", flag.ExitOnError)
	c := commonFlags(fs)
	_ = fs.Parse(args)

	cfg, logger, closeLog, err := c.setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer closeLog()

	adapter := predict.Open(ctx, cfg.Model.Type, cfg.Model.Path, logger)
	session := prompt.NewSession(prompt.NewSurveyDriver(os.Stdout), adapter)
	if _, err := session.Run(ctx); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			return 130
		}
		var uerr *predict.ModelUnavailableError
		if !errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func cmdBatch(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	c := commonFlags(fs)
	inPath := fs.String("in", "", "Input CSV with a header of feature names")
	outPath := fs.String("out", "results/predictions.csv", "Output CSV path")
	_ = fs.Parse(args)

	if *inPath == "" {
		fmt.Println("--in is required")
		return 2
	}

	cfg, logger, closeLog, err := c.setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer closeLog()

	adapter := predict.Open(ctx, cfg.Model.Type, cfg.Model.Path, logger)
	if !adapter.Available() {
		fmt.Fprintln(os.Stderr, adapter.Diagnostic())
		return 1
	}

	n, err := batch.ScoreFile(ctx, adapter, *inPath, *outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in prediction: %v\n", err)
		return 1
	}
	fmt.Printf("Wrote %d rows to %s\n", n, *outPath)
	return 0
}

func cmdFetchDataset(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("fetch-dataset", flag.ExitOnError)
	c := commonFlags(fs)
	out := fs.String("out", "", "Destination path (overrides config)")
	_ = fs.Parse(args)

	cfg, logger, closeLog, err := c.setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer closeLog()

	if *out != "" {
		cfg.Dataset.Path = *out
	}
	fetcher := data.FetcherFromConfig(cfg.Dataset, logger)
	downloaded, err := fetcher.Ensure(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dataset download failed: %v\n", err)
		return 1
	}
	if !downloaded {
		fmt.Printf("Dataset already present at %s\n", cfg.Dataset.Path)
		return 0
	}

	t, err := data.LoadTable(cfg.Dataset.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dataset downloaded but unreadable: %v\n", err)
		return 1
	}
	fmt.Printf("Downloaded %d rows (%d columns) to %s\n", len(t.Rows), len(t.Header), cfg.Dataset.Path)
	return 0
}

func fieldUsage(f model.Field) string {
	if f.Bounded {
		return fmt.Sprintf("%s (%s, %s to %s)", f.Name, f.Kind, f.FormatValue(f.Min), f.FormatValue(f.Max))
	}
	return fmt.Sprintf("%s (%s)", f.Name, f.Kind)
}
