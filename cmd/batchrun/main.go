// Command batchrun builds a Job from a JSON config file and runs it to
// completion, exiting 0 on a COMPLETED run and 1 otherwise — the
// executor-as-CLI surface, analogous to blueprint's
// sample/application/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/config"
	"github.com/oddbit-project/batchcore/config/provider"
	"github.com/oddbit-project/batchcore/contrib/filereader"
	"github.com/oddbit-project/batchcore/contrib/filewriter"
	"github.com/oddbit-project/batchcore/log"
)

const version = "1.0.0"

// CliArgs are the command-line options.
type CliArgs struct {
	ConfigFile  *string
	ShowVersion *bool
}

var cliArgs = &CliArgs{
	ConfigFile:  flag.String("c", "config/batchrun.json", "Config file"),
	ShowVersion: flag.Bool("version", false, "Show version"),
}

// IOConfig describes the input and output files wired in as the job's
// reader/writer. Non-configurable transports (Kafka, NATS, Postgres...)
// are available as library adapters under contrib/ but are not wired
// into this generic binary.
type IOConfig struct {
	InputPath  string `json:"inputPath"`
	OutputPath string `json:"outputPath"`
	Source     string `json:"source" default:"batchrun"`
}

func buildJob(cfg config.ConfigProvider) (*batch.Job, error) {
	jobNode, err := cfg.GetConfigNode("job")
	if err != nil {
		jobNode = cfg
	}
	params, err := batch.ParametersFromConfig(jobNode)
	if err != nil {
		return nil, err
	}

	ioCfg := &IOConfig{}
	if err := cfg.GetKey("io", ioCfg); err != nil {
		return nil, err
	}
	if ioCfg.InputPath == "" || ioCfg.OutputPath == "" {
		return nil, fmt.Errorf("batchrun: io.inputPath and io.outputPath are required")
	}

	job, err := batch.NewBuilder().
		WithParameters(params).
		Reader(filereader.NewReader(ioCfg.InputPath, ioCfg.Source)).
		Writer(filewriter.NewWriter(ioCfg.OutputPath)).
		Build()
	if err != nil {
		return nil, err
	}
	return job, nil
}

func run(ctx context.Context, args *CliArgs) int {
	cfg, err := provider.NewJsonProvider(*args.ConfigFile)
	if err != nil {
		log.Error(ctx, err, "failed to load config")
		return 1
	}

	job, err := buildJob(cfg)
	if err != nil {
		log.Error(ctx, err, "failed to build job")
		return 1
	}

	log.Infof(ctx, "starting job %q", job.Parameters().Name)

	report, err := job.Run(ctx)
	if err != nil {
		log.Error(ctx, err, "job run failed")
		return 1
	}

	fmt.Println(report.String())

	if report.Status() != batch.StatusCompleted {
		return 1
	}
	return 0
}

func main() {
	log.Configure(log.NewDefaultConfig())

	flag.Parse()

	if *cliArgs.ShowVersion {
		fmt.Printf("Version: %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(context.Background(), cliArgs))
}
