// Package rosyc is the compiler's stable public surface: a single Compile
// entry point running the parse, type-resolution, and emission stages
// without touching the filesystem or the external build tool. Embedders
// that want a runnable binary use the CLI, which adds the project layout
// and build-tool stages on top of this package.
package rosyc

import "github.com/rosy-lang/rosyc/internal/driver"

// Options configures a Compile call.
type Options struct {
	// Filename is used in diagnostics; "<source>" if empty.
	Filename string
}

// Result holds the compilation products.
type Result struct {
	// TGT is the generated target-language source, ready for injection
	// into the runtime's main-file template.
	TGT string
}

// Compile runs source through the pipeline's compile stages and returns
// the generated TGT text. Any stage failure returns a structured
// diagnostic error whose message carries source positions and a
// contextual chain.
func Compile(source string, opts Options) (*Result, error) {
	filename := opts.Filename
	if filename == "" {
		filename = "<source>"
	}
	emitted, err := driver.CompileSource(source, filename)
	if err != nil {
		return nil, err
	}
	return &Result{TGT: emitted}, nil
}
