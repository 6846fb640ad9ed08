package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateProjectLayout(t *testing.T) {
	dir := t.TempDir()
	if err := CreateProject(dir); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	for _, path := range []string{
		"Cargo.toml",
		"src/main.rs",
		"vendored/runtime/Cargo.toml",
		"vendored/runtime/src/lib.rs",
		"vendored/runtime/src/mpi.rs",
		"vendored/runtime/src/optimizer/mod.rs",
	} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(path))); err != nil {
			t.Errorf("expected %s in the generated project: %v", path, err)
		}
	}
}

func TestUnpackRewritesCratePaths(t *testing.T) {
	dir := t.TempDir()
	if err := CreateProject(dir); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	lib, err := os.ReadFile(filepath.Join(dir, "vendored", "runtime", "src", "lib.rs"))
	if err != nil {
		t.Fatalf("reading unpacked lib.rs: %v", err)
	}
	if strings.Contains(string(lib), "crate::runtime::") {
		t.Fatalf("lib.rs still references crate::runtime:: after unpacking")
	}
	if !strings.Contains(string(lib), "#![allow(dead_code)]") {
		t.Fatalf("lib.rs should carry the warning suppressions")
	}
}

func TestInjectCode(t *testing.T) {
	out, err := InjectCode("let mut X: f64 = 0.0_f64;\nprintln!();")
	if err != nil {
		t.Fatalf("InjectCode failed: %v", err)
	}
	if !strings.Contains(out, "\tlet mut X: f64 = 0.0_f64;\n") {
		t.Fatalf("injected code should be indented by one tab, got:\n%s", out)
	}
	if !strings.Contains(out, "rosy_runtime::mpi::init()?;") {
		t.Fatalf("template should initialize MPI before the injected region, got:\n%s", out)
	}
	start := strings.Index(out, InjectStart)
	end := strings.Index(out, InjectEnd)
	if start == -1 || end == -1 || end < start {
		t.Fatalf("sentinels missing or reordered in output:\n%s", out)
	}
}

func TestMainTemplateHasEachSentinelOnce(t *testing.T) {
	// Guard the template itself: both sentinels must be present exactly
	// once for injection to be well-defined.
	template, err := mainTemplate()
	if err != nil {
		t.Fatalf("reading template: %v", err)
	}
	if strings.Count(template, InjectStart) != 1 || strings.Count(template, InjectEnd) != 1 {
		t.Fatalf("template must contain each sentinel exactly once:\n%s", template)
	}
}
