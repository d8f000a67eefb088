// Command tidalsim drives the TidalSim sampled-simulation acceleration
// pipeline: basic-block extraction, interval embedding, MTR-based
// checkpoint postprocessing, and cache-state inspection.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/schollz/progressbar/v3"

	"github.com/tidalsim/tidalsim/internal/bbextract"
	"github.com/tidalsim/tidalsim/internal/cacheio"
	"github.com/tidalsim/tidalsim/internal/cacheparams"
	"github.com/tidalsim/tidalsim/internal/checkpoint"
	"github.com/tidalsim/tidalsim/internal/config"
	"github.com/tidalsim/tidalsim/internal/dram"
	"github.com/tidalsim/tidalsim/internal/embed"
	"github.com/tidalsim/tidalsim/internal/inspect"
	"github.com/tidalsim/tidalsim/internal/mtr"
	"github.com/tidalsim/tidalsim/internal/pipeline"
	"github.com/tidalsim/tidalsim/internal/tracelog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "tidalsim: %v\n", err)
		os.Exit(1)
	}
}

// exitError carries a specific process exit code out of run, mirroring
// the teacher's initx.ExitError convention.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

// hexFlag parses "0x"-prefixed or bare-decimal uint64 flag values.
type hexFlag struct {
	v uint64
}

func (f *hexFlag) String() string { return strconv.FormatUint(f.v, 16) }

func (f *hexFlag) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return err
	}
	f.v = v
	return nil
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return &exitError{code: 2}
	}

	switch args[0] {
	case "embed":
		return runEmbed(args[1:])
	case "checkpoint-plan":
		return runCheckpointPlan(args[1:])
	case "postprocess":
		return runPostprocess(args[1:])
	case "inspect":
		return runInspect(args[1:])
	case "-h", "-help", "--help", "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: tidalsim <subcommand> [flags]

Subcommands:
  embed             extract basic blocks from a trace and emit interval embeddings
  checkpoint-plan   build a checkpoint command plan for an external simulator
  postprocess       reconstruct and serialize cache state for a set of checkpoints
  inspect           pretty-print a serialized cache image

`)
}

func runEmbed(args []string) error {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	logPath := fs.String("log", "", "path to the functional-simulator instruction log")
	configPath := fs.String("config", "", "path to the YAML run configuration")
	fullCommit := fs.Bool("full-commit-log", false, "the log carries a companion commit line per instruction")
	progress := fs.Bool("progress", false, "show a progress bar while scanning the log")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *logPath == "" || *configPath == "" {
		return fmt.Errorf("embed: -log and -config are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	f, err := os.Open(*logPath)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	defer f.Close()

	var bar *progressbar.ProgressBar
	if *progress {
		bar = progressbar.Default(-1, "extracting basic blocks")
	}
	extractParser, err := tracelog.NewParser(f, *fullCommit,
		tracelog.WithDRAMBase(cfg.DRAMBase),
		tracelog.WithProgressBar(bar),
	)
	if err != nil {
		return err
	}
	bb, err := bbextract.Extract(extractParser)
	extractParser.Close()
	if err != nil {
		return err
	}
	slog.Info("extracted basic-block map", "blocks", bb.Len())

	if _, err := f.Seek(0, 0); err != nil {
		return fmt.Errorf("embed: rewinding log: %w", err)
	}
	embedParser, err := tracelog.NewParser(f, *fullCommit, tracelog.WithDRAMBase(cfg.DRAMBase))
	if err != nil {
		return err
	}
	defer embedParser.Close()

	rows, err := embed.Embed(embedParser, bb, cfg.IntervalLength)
	if err != nil {
		return err
	}

	fmt.Println("inst_start,inst_count,instret,embedding")
	for _, row := range rows {
		fmt.Printf("%d,%d,%d,%v\n", row.InstStart, row.InstCount, row.Instret, row.Embedding)
	}
	return nil
}

func runCheckpointPlan(args []string) error {
	fs := flag.NewFlagSet("checkpoint-plan", flag.ExitOnError)
	configPath := fs.String("config", "", "path to the YAML run configuration")
	baseDir := fs.String("base-dir", "", "directory checkpoint subdirectories are created under")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" || *baseDir == "" {
		return fmt.Errorf("checkpoint-plan: -config and -base-dir are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	plan := checkpoint.BuildPlan(cfg.Checkpoints.StartPC, cfg.Checkpoints.InstPoints, cfg.Checkpoints.NHarts, *baseDir)
	for _, line := range plan.Cmds.Lines {
		fmt.Println(line)
	}
	slog.Info("built checkpoint plan", "checkpoints", len(plan.Points), "expected_lines", plan.Cmds.ExpectedLines)
	return nil
}

func runPostprocess(args []string) error {
	fs := flag.NewFlagSet("postprocess", flag.ExitOnError)
	logPath := fs.String("log", "", "path to the full-commit-log functional-simulator trace")
	configPath := fs.String("config", "", "path to the YAML run configuration")
	baseDir := fs.String("base-dir", "", "directory checkpoint subdirectories live under")
	dramPath := fs.String("dram", "", "optional DRAM image for cache-data population")
	var dramBase hexFlag
	fs.Var(&dramBase, "dram-base", "override the DRAM base address from the config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *logPath == "" || *configPath == "" || *baseDir == "" {
		return fmt.Errorf("postprocess: -log, -config, and -base-dir are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if dramBase.v != 0 {
		cfg.DRAMBase = dramBase.v
	}
	params, err := cfg.CacheParams()
	if err != nil {
		return err
	}

	f, err := os.Open(*logPath)
	if err != nil {
		return fmt.Errorf("postprocess: %w", err)
	}
	defer f.Close()

	p, err := tracelog.NewParser(f, true, tracelog.WithDRAMBase(cfg.DRAMBase))
	if err != nil {
		return err
	}
	defer p.Close()

	var image *dram.Image
	if *dramPath != "" {
		image, err = dram.Open(*dramPath, cfg.DRAMBase)
		if err != nil {
			return err
		}
		defer image.Close()
	}

	var mtrOpts []mtr.Option
	if image != nil {
		mtrOpts = append(mtrOpts, mtr.WithCommitValidation(image, slog.Default()))
	}
	mtrCkpts, err := mtr.CkptsFromInstPoints(p, params.BlockSizeBytes, cfg.Checkpoints.InstPoints, mtrOpts...)
	if err != nil {
		return err
	}

	checkpoints := make([]pipeline.Checkpoint, len(mtrCkpts))
	for i, m := range mtrCkpts {
		dir := fmt.Sprintf("%s/0x%x.%d", *baseDir, cfg.Checkpoints.StartPC, cfg.Checkpoints.InstPoints[i])
		checkpoints[i] = pipeline.Checkpoint{Dir: dir, MTR: m}
	}

	results, err := pipeline.RunCheckpointPostprocess(context.Background(), checkpoints, params, image, "tag", "data")
	if err != nil {
		return err
	}
	for _, r := range results {
		slog.Info("wrote checkpoint cache state", "dir", r.Dir)
	}
	return nil
}

func inspectLoad(dir string, params cacheparams.Params) (*cacheio.CacheImage, error) {
	img, err := cacheio.ParseTagArrays(params, dir, "tag")
	if err != nil {
		return nil, err
	}
	if err := cacheio.ParseDataArrays(img, dir, "data"); err != nil {
		return nil, err
	}
	return img, nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	configPath := fs.String("config", "", "path to the YAML run configuration")
	dir := fs.String("dir", "", "checkpoint directory containing tag*.bin/data*.bin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" || *dir == "" {
		return fmt.Errorf("inspect: -config and -dir are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	params, err := cfg.CacheParams()
	if err != nil {
		return err
	}

	img, err := inspectLoad(*dir, params)
	if err != nil {
		return err
	}

	inspect.PrintTagTable(os.Stdout, img)
	inspect.PrintSummary(os.Stdout, img)
	return nil
}
