package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/QuEraComputing/kirin/internal/testdialect/stagecall"
	"github.com/QuEraComputing/kirin/parser"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"

	"github.com/QuEraComputing/kirin/interp/stackinterp"
)

var (
	runEntry    string
	runStage    string
	runManifest string
	runArgs     string
	runFuel     int
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Parse a wire-format file and run one of its functions to completion",
	Long: `run builds a Pipeline from file, resolves --entry's unique live
specialization at --stage, and drives the concrete stack interpreter to
completion, printing the returned values.

Example:
  kirin run countdown.kirin --stage main --entry countdown --args 5`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runEntry, "entry", "", "function name to run (required)")
	runCmd.Flags().StringVar(&runStage, "stage", "main", "stage name the entry function is staged at")
	runCmd.Flags().StringVar(&runManifest, "manifest", "", "YAML stage manifest to pre-register before parsing")
	runCmd.Flags().StringVar(&runArgs, "args", "", "comma-separated int64 arguments to the entry function")
	runCmd.Flags().IntVar(&runFuel, "fuel", stackinterp.DefaultFuel, "statement execution budget")
	_ = runCmd.MarkFlagRequired("entry")
}

func runRun(_ *cobra.Command, posArgs []string) error {
	file := posArgs[0]
	text, err := readSource(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	p := pipeline.New()
	if runManifest != "" {
		if err := loadManifest(runManifest, p); err != nil {
			return err
		}
	}

	if _, err := parser.Parse[*stagecall.Op, stagecall.IntType](p, stagecallCodec, stage.SingleDispatch, text, file); err != nil {
		return err
	}

	handle, err := p.StageByName(p.Symbols.Intern(runStage))
	if err != nil {
		return fmt.Errorf("stage @%s: %w", runStage, err)
	}
	info, ok := pipeline.ForDialect[*stagecall.Op, stagecall.IntType](handle)
	if !ok {
		return fmt.Errorf("stage @%s is not a stagecall stage", runStage)
	}

	fn := p.Function(runEntry)
	if len(info.StagedOf(fn)) > 1 {
		return fmt.Errorf("function @%s is ambiguous at @%s under MultipleDispatch; run does not pick an overload", runEntry, runStage)
	}
	staged, err := p.StagedAt(fn, handle.ID())
	if err != nil {
		return fmt.Errorf("function @%s at @%s: %w", runEntry, runStage, err)
	}
	spec, err := info.UniqueLiveSpecialization(staged)
	if err != nil {
		return err
	}

	values, err := parseArgs(runArgs)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Printf("running @%s at @%s with args %v\n", runEntry, runStage, values)
	}

	si := stackinterp.New[int64](p).WithFuel(runFuel)
	if err := stackinterp.Call[*stagecall.Op, stagecall.IntType, int64](si, handle.ID(), spec, values); err != nil {
		return err
	}
	results, err := stackinterp.Run[*stagecall.Op, stagecall.IntType, int64](si)
	if err != nil {
		return err
	}

	fmt.Println(results)
	return nil
}

func parseArgs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad --args value %q: %w", p, err)
		}
		out[i] = n
	}
	return out, nil
}
