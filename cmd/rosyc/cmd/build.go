package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rosy-lang/rosyc/internal/driver"
	"github.com/spf13/cobra"
)

var (
	buildOutput   string
	buildBuildDir string
	buildRelease  bool
)

var buildCmd = &cobra.Command{
	Use:   "build <source>",
	Short: "Compile a ROSY program and copy the binary here",
	Long: `Compile a ROSY source file, build the generated project, and copy the
resulting binary into the current directory.

Examples:
  # Build orbit.rosy into ./orbit
  rosyc build orbit.rosy

  # Pick the output name
  rosyc build orbit.rosy -o tracker`,
	Args: cobra.ExactArgs(1),
	RunE: buildProgram,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output binary name (default: source name without extension)")
	buildCmd.Flags().StringVarP(&buildBuildDir, "build-dir", "d", driver.DefaultBuildDir, "output directory for build artifacts")
	buildCmd.Flags().BoolVar(&buildRelease, "release", false, "build the generated code with optimizations")
}

func buildProgram(_ *cobra.Command, args []string) error {
	binary, err := driver.Build(args[0], driver.Options{
		BuildDir: buildBuildDir,
		Release:  buildRelease,
		Verbose:  verbose,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	name := buildOutput
	if name == "" {
		base := filepath.Base(args[0])
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := driver.CopyBinary(binary, name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "binary copied to %s\n", name)
	}
	return nil
}
