package cmd

import (
	"fmt"
	"os"

	"github.com/rosy-lang/rosyc/internal/driver"
	"github.com/spf13/cobra"
)

var (
	runBuildDir string
	runRelease  bool
)

var runCmd = &cobra.Command{
	Use:   "run <source>",
	Short: "Compile and execute a ROSY program",
	Long: `Compile a ROSY source file, build the generated project, and run the
resulting binary. The program's exit code becomes rosyc's exit code.

Examples:
  # Compile and run a program
  rosyc run orbit.rosy

  # Keep build artifacts in a specific directory
  rosyc run orbit.rosy -d ./build

  # Optimized build of the generated code
  rosyc run orbit.rosy --release`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runBuildDir, "build-dir", "d", driver.DefaultBuildDir, "output directory for build artifacts")
	runCmd.Flags().BoolVar(&runRelease, "release", false, "build the generated code with optimizations")
}

func runProgram(_ *cobra.Command, args []string) error {
	binary, err := driver.Build(args[0], driver.Options{
		BuildDir: runBuildDir,
		Release:  runRelease,
		Verbose:  verbose,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	code, err := driver.Run(binary)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}
