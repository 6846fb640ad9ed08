package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.rosy")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileSourceEmitsTarget(t *testing.T) {
	out, err := CompileSource(`BEGIN
    VARIABLE (RE) X;
    X := 1 + 2;
    WRITE 6 X;
END;`, "program.rosy")
	require.NoError(t, err)
	assert.Contains(t, out, "rosy_add")
	assert.Contains(t, out, "println!")
}

func TestCompileSourceReportsParseErrors(t *testing.T) {
	_, err := CompileSource(`BEGIN
    VARIABLE (RE X;
END;`, "program.rosy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing failed")
}

func TestCompileSourceWrapsResolveErrors(t *testing.T) {
	_, err := CompileSource(`BEGIN
    VARIABLE (RE) X;
    X := "hello";
END;`, "program.rosy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "while resolving types")
	assert.Contains(t, err.Error(), "Type Conflict")
}

// A stub build tool stands in for cargo: the driver only requires that the
// subprocess exits zero and leaves its project directory in place.
func TestBuildWithStubTool(t *testing.T) {
	src := writeSource(t, `BEGIN
    WRITE 6;
END;`)
	buildDir := filepath.Join(t.TempDir(), "out")

	binary, err := Build(src, Options{BuildDir: buildDir, BuildTool: "true"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(buildDir, "target", "debug", "rosy_output"), binary)

	mainFile, err := os.ReadFile(filepath.Join(buildDir, "src", "main.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(mainFile), "println!();")

	if _, err := os.Stat(filepath.Join(buildDir, "vendored", "runtime", "src", "lib.rs")); err != nil {
		t.Fatalf("expected the vendored runtime to be unpacked: %v", err)
	}
}

func TestBuildSurfacesToolFailure(t *testing.T) {
	src := writeSource(t, `BEGIN
    WRITE 6;
END;`)
	buildDir := filepath.Join(t.TempDir(), "out")

	_, err := Build(src, Options{BuildDir: buildDir, BuildTool: "false"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "external build failed")
}

func TestBinaryPathFollowsProfile(t *testing.T) {
	assert.True(t, strings.HasSuffix(BinaryPath("out", false), filepath.Join("debug", "rosy_output")))
	assert.True(t, strings.HasSuffix(BinaryPath("out", true), filepath.Join("release", "rosy_output")))
}
