// Package driver glues the compilation stages together: it reads a source
// file, runs the parse/resolve/emit pipeline, lays the generated project
// out on disk, and invokes the external TGT build tool as a blocking
// subprocess.
package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rosy-lang/rosyc/internal/emit"
	"github.com/rosy-lang/rosyc/internal/errors"
	"github.com/rosy-lang/rosyc/internal/lexer"
	"github.com/rosy-lang/rosyc/internal/parser"
	"github.com/rosy-lang/rosyc/internal/resolve"
	"github.com/rosy-lang/rosyc/internal/runtime"
)

// DefaultBuildDir is where generated projects land when -d is not given.
const DefaultBuildDir = ".rosy_output"

// binaryName matches the generated project's package name.
const binaryName = "rosy_output"

// Options configures one compile-and-build invocation.
type Options struct {
	// BuildDir is the output project directory; DefaultBuildDir if empty.
	BuildDir string
	// Release selects optimized compilation of the generated TGT.
	Release bool
	// Verbose echoes the build tool's output even on success.
	Verbose bool
	// BuildTool overrides the external build command, used by tests to
	// substitute a stub; "cargo" if empty.
	BuildTool string
}

func (o Options) buildDir() string {
	if o.BuildDir == "" {
		return DefaultBuildDir
	}
	return o.BuildDir
}

func (o Options) buildTool() string {
	if o.BuildTool == "" {
		return "cargo"
	}
	return o.BuildTool
}

// CompileSource runs stages 1 through 4 — parse, AST construction, type
// resolution, emission — returning the generated TGT text.
func CompileSource(source, filename string) (string, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		compilerErrors := errors.FromStringErrors(p.Errors(), source, filename)
		return "", fmt.Errorf("parsing failed with %d error(s):\n%s",
			len(p.Errors()), errors.FormatErrors(compilerErrors, false))
	}
	for _, warning := range p.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	result, err := resolve.Resolve(program)
	if err != nil {
		return "", errors.Wrap(err, "resolving types")
	}

	emitted, err := emit.Emit(program, result)
	if err != nil {
		return "", errors.Wrap(err, "generating target code")
	}
	return emitted, nil
}

// Build compiles the source file at sourcePath and drives the external
// build tool over the generated project. It returns the built binary's
// path.
func Build(sourcePath string, opts Options) (string, error) {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("reading source file %s: %w", sourcePath, err)
	}

	emitted, err := CompileSource(string(content), sourcePath)
	if err != nil {
		return "", err
	}

	buildDir := opts.buildDir()
	if err := runtime.CreateProject(buildDir); err != nil {
		return "", errors.Wrap(err, "creating the output project")
	}
	if err := runtime.WriteMain(buildDir, emitted); err != nil {
		return "", errors.Wrap(err, "writing the generated main file")
	}

	if err := runBuildTool(buildDir, opts); err != nil {
		return "", err
	}
	return BinaryPath(buildDir, opts.Release), nil
}

// BinaryPath is where the build tool leaves the compiled binary.
func BinaryPath(buildDir string, release bool) string {
	profile := "debug"
	if release {
		profile = "release"
	}
	return filepath.Join(buildDir, "target", profile, binaryName)
}

// runBuildTool shells out to the external build tool inside the generated
// project. Its stdout and stderr are captured and re-logged so build
// failures of the generated TGT surface in the compiler's own diagnostics.
func runBuildTool(buildDir string, opts Options) error {
	args := []string{"build", "--bin", binaryName}
	if opts.Release {
		args = append(args, "--release")
	}

	cmd := exec.Command(opts.buildTool(), args...)
	cmd.Dir = buildDir
	output, err := cmd.CombinedOutput()

	if opts.Verbose && len(output) > 0 {
		fmt.Fprintf(os.Stderr, "%s output:\n%s\n", opts.buildTool(), output)
	}
	if err != nil {
		return fmt.Errorf("external build failed (%s %s):\n%s\nerror: %w",
			opts.buildTool(), strings.Join(args, " "), output, err)
	}
	return nil
}

// Run executes a built binary, forwarding its standard streams, and
// returns its exit code.
func Run(binaryPath string) (int, error) {
	cmd := exec.Command(binaryPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("running %s: %w", binaryPath, err)
}

// CopyBinary places a built binary at destination, used by the build
// subcommand to drop the result in the working directory.
func CopyBinary(binaryPath, destination string) error {
	data, err := os.ReadFile(binaryPath)
	if err != nil {
		return fmt.Errorf("reading built binary %s: %w", binaryPath, err)
	}
	if err := os.WriteFile(destination, data, 0o755); err != nil {
		return fmt.Errorf("copying binary to %s: %w", destination, err)
	}
	return nil
}
