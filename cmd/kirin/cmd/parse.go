package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QuEraComputing/kirin/internal/testdialect/stagecall"
	"github.com/QuEraComputing/kirin/parser"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

var parseManifestFlag string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a wire-format file and report the functions it touched",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVar(&parseManifestFlag, "manifest", "", "YAML stage manifest to pre-register before parsing")
}

func runParse(_ *cobra.Command, args []string) error {
	file := args[0]
	text, err := readSource(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	p := pipeline.New()
	if parseManifestFlag != "" {
		if err := loadManifest(parseManifestFlag, p); err != nil {
			return err
		}
	}

	touched, err := parser.Parse[*stagecall.Op, stagecall.IntType](p, stagecallCodec, stage.SingleDispatch, text, file)
	if err != nil {
		return err
	}

	fmt.Printf("parsed %s: %d function(s) touched\n", file, len(touched))
	for _, fn := range touched {
		info, ok := p.Functions.Get(fn)
		name := fmt.Sprintf("%d", fn.Raw())
		if ok && info.Name != nil {
			if s, ok := p.Symbols.Resolve(*info.Name); ok {
				name = s
			}
		}
		fmt.Printf("  @%s\n", name)
	}
	return nil
}
