package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "kirin",
	Short: "Kirin multi-stage compiler IR framework",
	Long: `kirin drives the staged/specialized function framework from the
command line: parsing the wire-format text a dialect's stages are written
in, running a specialization to completion, and pretty-printing a stage
back out.

This binary ships with the stagecall dialect (integer constants, decrement,
zero-test branching) as its only built-in dialect, wired together with an
optional YAML stage manifest.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
