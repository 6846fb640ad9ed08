package cmd

import (
	"github.com/spf13/cobra"
)

// Version information (set by build flags)
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "rosyc",
	Short: "ROSY compiler",
	Long: `rosyc compiles ROSY programs to native binaries.

ROSY is a scientific-computing language for beam physics work: real,
complex, vector and differential-algebra arithmetic, parallel loops over
MPI worker groups, and built-in numeric optimization blocks. rosyc
translates a source file to target-language code, pairs it with the
bundled runtime library, and drives the external build toolchain to
produce an executable.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
