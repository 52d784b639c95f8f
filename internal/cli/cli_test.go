package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/treemap/pkg/errors"
	tio "github.com/matzehuels/treemap/pkg/io"
)

const testTree = `{
  "name": "disk",
  "children": [
    {"name": "src", "children": [
      {"name": "main.go", "value": 600},
      {"name": "util.go", "value": 200}
    ]},
    {"name": "docs", "value": 200}
  ]
}`

// run executes the root command with args inside a temp working tree and
// returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTree(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("TREEMAP_CONFIG", "")
	path := filepath.Join(t.TempDir(), "disk.json")
	if err := os.WriteFile(path, []byte(testTree), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLayoutCommand(t *testing.T) {
	input := writeTree(t)
	if _, err := run(t, "layout", input, "--width", "400", "--height", "300", "-i", "root:src"); err != nil {
		t.Fatalf("layout error: %v", err)
	}

	data, err := os.ReadFile(strings.TrimSuffix(input, ".json") + ".layout.json")
	if err != nil {
		t.Fatalf("layout output missing: %v", err)
	}
	l, err := tio.UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	if l.ViewRoot != "src" || l.Viewport.Width != 400 {
		t.Errorf("view root %q viewport %+v, want src at 400 wide", l.ViewRoot, l.Viewport)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	input := writeTree(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown target", []string{"layout", input, "-i", "zoom:nope"}, errors.ErrCodeNodeNotFound},
		{"bad sort", []string{"layout", input, "--sort", "sideways"}, errors.ErrCodeInvalidOption},
		{"bad extension", []string{"layout", "tree.xml"}, errors.ErrCodeInvalidFormat},
		{"missing config", []string{"--config", "/nonexistent/treemap.toml", "layout", input}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRenderAndVisualize(t *testing.T) {
	input := writeTree(t)
	base := strings.TrimSuffix(input, ".json")

	if _, err := run(t, "render", input, "-f", "svg,dot,json", "--theme", "dark"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	svg, err := os.ReadFile(base + ".svg")
	if err != nil || !bytes.Contains(svg, []byte("<svg")) {
		t.Fatalf("svg output: %v", err)
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil || !bytes.Contains(dot, []byte("digraph")) {
		t.Fatalf("dot output: %v", err)
	}
	if raw, err := os.ReadFile(input); err != nil || string(raw) != testTree {
		t.Fatal("json output must not replace the input document")
	}

	out := filepath.Join(t.TempDir(), "view.png")
	if _, err := run(t, "visualize", base+".layout.json", "-f", "png", "-o", out, "--scale", "2"); err != nil {
		t.Fatalf("visualize error: %v", err)
	}
	png, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("png output: %v", err)
	}
}

func TestConfigFile(t *testing.T) {
	input := writeTree(t)
	cacheDir := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "treemap.toml")
	content := "[render]\nwidth = 320\nheight = 200\n\n[cache]\ndir = \"" + filepath.ToSlash(cacheDir) + "\"\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(cacheDir) {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), cacheDir)
	}

	output := filepath.Join(t.TempDir(), "l.json")
	if _, err := run(t, "--config", cfg, "layout", input, "-o", output); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	l, err := tio.UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	if l.Viewport.Width != 320 || l.Viewport.Height != 200 {
		t.Errorf("viewport = %+v, want config size 320x200", l.Viewport)
	}

	entries, _ := os.ReadDir(cacheDir)
	if len(entries) == 0 {
		t.Fatal("layout should have been cached in the config dir")
	}
	if _, err := run(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if entries, _ := os.ReadDir(cacheDir); len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := run(t, "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("%s completion does not mention %s", shell, appName)
			}
		})
	}
}

func TestExecuteVersion(t *testing.T) {
	if err := Execute(context.Background(), []string{"--version"}); err != nil {
		t.Fatalf("Execute(--version) error: %v", err)
	}
}
