// Package runtime carries the pre-authored TGT runtime library, embedded
// into the compiler binary, and unpacks it into a generated project's
// build directory. The runtime sources live under embedded/ as the
// runtime module of the original tree; unpacking rewrites their internal
// crate::runtime:: paths to crate:: because the vendored copy is itself
// the crate root.
package runtime

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

//go:embed embedded template
var files embed.FS

// Sentinels in the main-file template between which the driver splices the
// emitter's output.
const (
	InjectStart = "// <INJECT_START>"
	InjectEnd   = "// <INJECT_END>"
)

// VendoredDir is the runtime's location inside a generated project,
// relative to the build directory.
const VendoredDir = "vendored/runtime"

const projectManifest = `[package]
name = "rosy_output"
version = "0.1.0"
edition = "2021"

[dependencies]
anyhow = "1.0"
rosy_runtime = { path = "./vendored/runtime" }
`

const runtimeManifest = `[package]
name = "rosy_runtime"
version = "0.1.0"
edition = "2021"

[dependencies]
anyhow = "1.0"
mpi = "0.8"
bincode = "2.0"
num-complex = "0.4"
`

// libAttrs suppresses warnings a generated program has no business
// surfacing: most programs exercise a fraction of the runtime.
const libAttrs = "#![allow(unused_imports)]\n#![allow(dead_code)]\n\n"

// CreateProject lays out a buildable project under buildDir: the build
// manifest, the vendored runtime, and the main-file template awaiting
// injection.
func CreateProject(buildDir string) error {
	if err := os.MkdirAll(filepath.Join(buildDir, "src"), 0o755); err != nil {
		return fmt.Errorf("creating project directory structure: %w", err)
	}
	if err := unpackRuntime(buildDir); err != nil {
		return fmt.Errorf("unpacking vendored runtime: %w", err)
	}
	if err := os.WriteFile(filepath.Join(buildDir, "Cargo.toml"), []byte(projectManifest), 0o644); err != nil {
		return fmt.Errorf("writing project manifest: %w", err)
	}
	template, err := mainTemplate()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(buildDir, "src", "main.rs"), []byte(template), 0o644); err != nil {
		return fmt.Errorf("writing main template: %w", err)
	}
	return nil
}

// unpackRuntime writes every embedded runtime source to its vendored
// location. The module-root file mod.rs becomes src/lib.rs, as the target
// build tool requires of a library crate root.
func unpackRuntime(buildDir string) error {
	libDir := filepath.Join(buildDir, filepath.FromSlash(VendoredDir))

	sources, err := doublestar.Glob(files, "embedded/**/*.rs")
	if err != nil {
		return fmt.Errorf("enumerating embedded runtime sources: %w", err)
	}
	for _, path := range sources {
		content, err := files.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading embedded file %s: %w", path, err)
		}

		rel := strings.TrimPrefix(path, "embedded/")
		target := filepath.Join(libDir, "src", filepath.FromSlash(rel))
		if rel == "mod.rs" {
			target = filepath.Join(libDir, "src", "lib.rs")
		}

		// Vendored, the runtime is its own crate: module paths that named
		// it as the compiler's runtime module now name the crate root.
		text := strings.ReplaceAll(string(content), "crate::runtime::", "crate::")
		if rel == "mod.rs" {
			text = libAttrs + text
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", target, err)
		}
		if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
	}

	if err := os.WriteFile(filepath.Join(libDir, "Cargo.toml"), []byte(runtimeManifest), 0o644); err != nil {
		return fmt.Errorf("writing runtime manifest: %w", err)
	}
	return nil
}

func mainTemplate() (string, error) {
	content, err := files.ReadFile("template/main.rs")
	if err != nil {
		return "", fmt.Errorf("reading embedded main template: %w", err)
	}
	return string(content), nil
}

// InjectCode splices the emitter's output between the template's
// sentinels, indenting every line by one tab to sit inside the generated
// main function.
func InjectCode(emitted string) (string, error) {
	template, err := mainTemplate()
	if err != nil {
		return "", err
	}

	head, rest, found := strings.Cut(template, InjectStart)
	if !found {
		return "", fmt.Errorf("main template is missing the %q sentinel", InjectStart)
	}
	_, tail, found := strings.Cut(rest, InjectEnd)
	if !found {
		return "", fmt.Errorf("main template is missing the %q sentinel", InjectEnd)
	}

	var b strings.Builder
	b.WriteString(head)
	b.WriteString(InjectStart)
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(emitted, "\n"), "\n") {
		b.WriteString("\t")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\t")
	b.WriteString(InjectEnd)
	b.WriteString(tail)
	return b.String(), nil
}

// WriteMain injects emitted code into the template and writes the result
// as the generated project's main file.
func WriteMain(buildDir, emitted string) error {
	contents, err := InjectCode(emitted)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(buildDir, "src", "main.rs"), []byte(contents), 0o644); err != nil {
		return fmt.Errorf("writing generated main file: %w", err)
	}
	return nil
}
