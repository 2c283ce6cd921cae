package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orofarne/mapnik/state"
)

const dotsStyle = `<?xml version="1.0" encoding="utf-8"?>
<Map background-color="#ffffff">
  <Style name="dots">
    <Rule>
      <MarkersSymbolizer fill="red" width="6"/>
    </Rule>
  </Style>
  <Layer name="dots">
    <StyleName>dots</StyleName>
    <Datasource>
      <Parameter name="type">csv</Parameter>
      <Parameter name="file">dots.csv</Parameter>
    </Datasource>
  </Layer>
</Map>
`

// setup creates a styles directory with a single case and returns the
// path of a configuration file using it.
func setup(t *testing.T) (dir, configFile string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{
		"styles/dots.xml": dotsStyle,
		"styles/dots.csv": "x,y,name\n0,0,a\n10,5,b\n",
		"catalog.yaml":    "cases:\n  - name: dots\n    sizes: [[60, 30]]\n",
		"config.yaml": `version: 1
paths:
  styles: ` + filepath.Join(dir, "styles") + `
  images: ` + filepath.Join(dir, "images") + `
  scratch: ` + filepath.Join(dir, "scratch") + `
  output: ` + filepath.Join(dir, "xml_output") + `
  catalog: ` + filepath.Join(dir, "catalog.yaml") + `
logging:
  console:
    level: none
  file:
    level: none
`,
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, filepath.Join(dir, "config.yaml")
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &strings.Builder{}
	ctx := state.ContextWithEnv(context.Background())
	err := newApp(out).Run(ctx, append([]string{"visualtest"}, args...))
	return out.String(), err
}

func TestGenerateThenCompare(t *testing.T) {
	dir, configFile := setup(t)

	out, err := runApp(t, "--config", configFile, "--generate", "-q")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "Rendering style") {
		t.Errorf("quiet run narrates: %q", out)
	}
	if !strings.Contains(out, "0/1 passed") || !strings.Contains(out, "no reference image") {
		t.Errorf("first run: %q", out)
	}
	for _, name := range []string{"images/dots-60-reference.png", "scratch/dots-60-agg.png", "xml_output/dots-out.xml"} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	out, err = runApp(t, "--config", configFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `Rendering style "dots" with size 60x30 ... `) {
		t.Errorf("missing narration in %q", out)
	}
	if !strings.Contains(out, "1/1 passed") || strings.Contains(out, "different pixels") {
		t.Errorf("second run: %q", out)
	}
}

func TestMissingReference(t *testing.T) {
	_, configFile := setup(t)

	if _, err := runApp(t, "--config", configFile, "-q"); err == nil {
		t.Error("missing reference image accepted")
	}
}

func TestList(t *testing.T) {
	_, configFile := setup(t)

	out, err := runApp(t, "--config", configFile, "--list")
	if err != nil {
		t.Fatal(err)
	}
	if f := strings.Fields(out); len(f) != 2 || f[0] != "dots" || f[1] != "[60x30]" {
		t.Errorf("list = %q", out)
	}

	// a single name is run at the square sizes, catalog or not
	out, err = runApp(t, "--config", configFile, "--list", "anything")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[800x800 600x600 400x400 200x200]") {
		t.Errorf("list = %q", out)
	}

	out, err = runApp(t, "--config", configFile, "--list", "-s", "nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("list = %q", out)
	}
}

func TestDumpConfig(t *testing.T) {
	dir, configFile := setup(t)

	out, err := runApp(t, "--config", configFile, "--dumpconfig")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "required_plugin: osm") || !strings.Contains(out, filepath.Join(dir, "catalog.yaml")) {
		t.Errorf("dump = %q", out)
	}
}
