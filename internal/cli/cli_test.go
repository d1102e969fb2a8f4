package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
)

const degreePlanCSV = "Curriculum,CS26\r\n" +
	"Degree Plan,Computer Science\r\n" +
	"Courses\r\n" +
	"Course ID,Course Name,Prefix,Number,Prerequisites,Corequisites,Strict-Corequisites,Credit Hours,Institution,Canonical Name,Term\r\n" +
	"1,CSE 11,CSE,11,,,,4,,,1\r\n" +
	"2,CSE 12,CSE,12,1,,,4,,,2\r\n" +
	"3,CSE 15L,CSE,15L,,,2,2,,,2\r\n" +
	"4,CSE 100,CSE,100,2;3,,,4,,,3\r\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeTable(t *testing.T) {
	plan := writeFile(t, "cs26.csv", degreePlanCSV)
	out, err := execute(t, "analyze", plan)
	require.NoError(t, err)

	for _, want := range []string{"CSE 11", "CSE 100", "Complexity", "Blocking", "semester"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "CSE 12 → CSE 100")
}

func TestAnalyzeJSON(t *testing.T) {
	plan := writeFile(t, "cs26.csv", degreePlanCSV)
	out, err := execute(t, "analyze", "--format", "json", plan)
	require.NoError(t, err)

	var a analysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "cs26.csv", a.Source)
	assert.Equal(t, "semester", a.System)
	require.Len(t, a.Courses, 4)

	byName := make(map[string]courseAnalysis)
	for _, c := range a.Courses {
		byName[c.Name] = c
	}
	assert.Equal(t, 3.0, byName["CSE 11"].BlockingFactor)
	assert.Equal(t, 0.0, byName["CSE 100"].BlockingFactor)
	require.NotNil(t, byName["CSE 11"].Term)
	assert.Equal(t, 0, *byName["CSE 11"].Term)

	require.Len(t, a.Redundant, 1)
	assert.Equal(t, redundantRequisite{Source: "CSE 12", Target: "CSE 100", Type: "prereq"}, a.Redundant[0])
}

func TestAnalyzeYAML(t *testing.T) {
	plan := writeFile(t, "cs26.csv", degreePlanCSV)
	out, err := execute(t, "analyze", "-f", "yaml", "--system", "quarter", plan)
	require.NoError(t, err)

	var a analysis
	require.NoError(t, yaml.Unmarshal([]byte(out), &a))
	assert.Equal(t, "quarter", a.System)
	assert.Len(t, a.Courses, 4)
}

func TestAnalyzeConfigFile(t *testing.T) {
	plan := writeFile(t, "cs26.csv", degreePlanCSV)
	cfg := writeFile(t, "curricula.toml", "system = \"quarter\"\n")

	out, err := execute(t, "--config", cfg, "analyze", "-f", "json", plan)
	require.NoError(t, err)

	var a analysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "quarter", a.System)

	t.Run("flag wins", func(t *testing.T) {
		out, err := execute(t, "--config", cfg, "analyze", "-f", "json", "--system", "semester", plan)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &a))
		assert.Equal(t, "semester", a.System)
	})
}

func TestCommandErrors(t *testing.T) {
	plan := writeFile(t, "cs26.csv", degreePlanCSV)
	cyclic := writeFile(t, "loop.csv", strings.Replace(degreePlanCSV, "1,CSE 11,CSE,11,,", "1,CSE 11,CSE,11,4,", 1))
	badConfig := writeFile(t, "bad.toml", "colour = \"blue\"\n")

	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"missing file", []string{"analyze", filepath.Join(t.TempDir(), "nope.csv")}, errs.ErrCodeFileNotFound},
		{"bad output format", []string{"analyze", "-f", "xml", plan}, errs.ErrCodeInvalidFormat},
		{"bad system", []string{"analyze", "--system", "trimester", plan}, errs.ErrCodeInvalidSystem},
		{"bad separator", []string{"analyze", "--separator", ";;", plan}, errs.ErrCodeInvalidInput},
		{"cycle", []string{"analyze", cyclic}, errs.ErrCodeCycleDetected},
		{"unknown config key", []string{"--config", badConfig, "analyze", plan}, errs.ErrCodeInvalidConfig},
		{"bad schedule format", []string{"schedule", "-f", "yaml", plan}, errs.ErrCodeInvalidFormat},
		{"bad term names", []string{"schedule", "--term-names", "roman", plan}, errs.ErrCodeInvalidInput},
		{"dot needs nodelink", []string{"render", "-f", "dot", plan}, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errs.GetCode(err), "error: %v", err)
		})
	}
}

func TestSchedule(t *testing.T) {
	plan := writeFile(t, "cs26.csv", degreePlanCSV)
	out, err := execute(t, "schedule", "--term-names", "quarter", plan)
	require.NoError(t, err)

	assert.Contains(t, out, "Fall 1")
	assert.Contains(t, out, "Winter 1")
	assert.Contains(t, out, "Spring 1")
	assert.Contains(t, out, "6 units")
	assert.Contains(t, out, "3 terms, 14 units")
}

func TestRender(t *testing.T) {
	plan := writeFile(t, "cs26.csv", degreePlanCSV)
	dir := t.TempDir()

	t.Run("plan svg", func(t *testing.T) {
		target := filepath.Join(dir, "plan.svg")
		out, err := execute(t, "render", "--select", "2", "-o", target, plan)
		require.NoError(t, err)
		assert.Contains(t, out, target)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<svg")
		assert.Contains(t, string(data), "CSE 15L")
	})

	t.Run("nodelink dot to stdout", func(t *testing.T) {
		out, err := execute(t, "render", "-t", "nodelink", "-f", "dot", "-o", "-", plan)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "digraph"), "output: %s", out)
	})

	t.Run("multiple formats share a base path", func(t *testing.T) {
		base := filepath.Join(dir, "both")
		_, err := execute(t, "render", "-f", "svg,json", "-o", base, plan)
		require.NoError(t, err)
		assert.FileExists(t, base+".svg")
		assert.FileExists(t, base+".json")
	})

	t.Run("refuses to overwrite input", func(t *testing.T) {
		svg := writeFile(t, "plan.svg", "<svg/>")
		_, err := execute(t, "render", "--input", "tabular", "-o", svg, svg)
		require.Error(t, err)
		assert.Equal(t, errs.ErrCodeInvalidPath, errs.GetCode(err))
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := execute(t, "render", "--select", "42", "-o", filepath.Join(dir, "x.svg"), plan)
		require.Error(t, err)
		assert.Equal(t, errs.ErrCodeNotFound, errs.GetCode(err))
	})
}

func TestCompletionIgnoresConfig(t *testing.T) {
	badConfig := writeFile(t, "bad.toml", "not toml at all [")
	out, err := execute(t, "--config", badConfig, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "curricula")
}
