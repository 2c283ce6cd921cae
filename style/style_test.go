package style

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"seehuhn.de/go/pdf/graphics"
)

const sampleStyle = `<?xml version="1.0" encoding="utf-8"?>
<Map srs="+proj=longlat +datum=WGS84" background-color="steelblue">
  <Style name="roads">
    <Rule>
      <Filter>[highway] = 'primary' or ([highway] = 'secondary' and [lanes] &gt;= 2)</Filter>
      <LineSymbolizer stroke="#f00" stroke-width="3" stroke-linecap="round" stroke-dasharray="4, 2"/>
    </Rule>
    <Rule>
      <ElseFilter/>
      <LineSymbolizer/>
    </Rule>
  </Style>
  <Style name="places">
    <Rule>
      <MarkersSymbolizer fill="rgba(255,0,0,0.5)" width="6"/>
      <TextSymbolizer face-name="DejaVu Sans Book" size="9" dy="-6">[name]</TextSymbolizer>
    </Rule>
  </Style>
  <Layer name="roads" status="on">
    <StyleName>roads</StyleName>
    <Datasource>
      <Parameter name="type">geojson</Parameter>
      <Parameter name="file">../data/roads.geojson</Parameter>
    </Datasource>
  </Layer>
  <Layer name="places" status="off">
    <StyleName>places</StyleName>
    <Datasource>
      <Parameter name="type">csv</Parameter>
      <Parameter name="inline">x,y,name
1,2,here</Parameter>
    </Datasource>
  </Layer>
</Map>
`

func TestLoadString(t *testing.T) {
	m, err := LoadString(sampleStyle, "/styles", true)
	if err != nil {
		t.Fatal(err)
	}
	if m.Base != "/styles" {
		t.Errorf("base = %q", m.Base)
	}
	if m.Background != (color.NRGBA{R: 70, G: 130, B: 180, A: 255}) {
		t.Errorf("background = %v", m.Background)
	}
	if len(m.Styles) != 2 || len(m.Layers) != 2 {
		t.Fatalf("got %d styles, %d layers", len(m.Styles), len(m.Layers))
	}

	roads := m.Style("roads")
	line := roads.Rules[0].Symbolizers[0].(*LineSymbolizer)
	if line.Width != 3 || line.Cap != graphics.LineCapRound || line.Join != graphics.LineJoinMiter {
		t.Errorf("line = %+v", line)
	}
	if !slices.Equal(line.Dash, []float64{4, 2}) {
		t.Errorf("dash = %v", line.Dash)
	}
	if !roads.Rules[1].ElseFilter {
		t.Error("ElseFilter not set")
	}

	text := m.Style("places").Rules[0].Symbolizers[1].(*TextSymbolizer)
	if text.Name != "[name]" || text.Dy != -6 || text.Size != 9 {
		t.Errorf("text = %+v", text)
	}
	if got := text.Label(map[string]any{"name": "here"}); got != "here" {
		t.Errorf("label = %q", got)
	}

	if m.Layers[1].Active {
		t.Error("places layer should be inactive")
	}
	if m.Layers[0].Params["file"] != "../data/roads.geojson" {
		t.Errorf("params = %v", m.Layers[0].Params)
	}
}

func TestLoadStrict(t *testing.T) {
	doc := `<Map frobnicate="yes">
  <Style name="s"><Rule><RasterSymbolizer/></Rule></Style>
  <Layer name="l"><StyleName>s</StyleName><Datasource><Parameter name="type">osm</Parameter></Datasource></Layer>
</Map>`

	if _, err := LoadString(doc, "", false); err != nil {
		t.Errorf("non-strict load failed: %v", err)
	}

	_, err := LoadString(doc, "", true)
	if err == nil {
		t.Fatal("strict load accepted unknown content")
	}
	msg := err.Error()
	for _, want := range []string{"frobnicate", "RasterSymbolizer"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %s", msg, want)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	bad := map[string]string{
		"root":          `<Style name="x"/>`,
		"color":         `<Map background-color="nope"/>`,
		"filter":        `<Map><Style name="s"><Rule><Filter>[a] = </Filter></Rule></Style></Map>`,
		"unknown_style": `<Map><Layer name="l"><StyleName>x</StyleName><Datasource/></Layer></Map>`,
		"no_datasource": `<Map><Layer name="l"/></Map>`,
		"status":        `<Map><Layer name="l" status="maybe"><Datasource/></Layer></Map>`,
		"linecap":       `<Map><Style name="s"><Rule><LineSymbolizer stroke-linecap="pointy"/></Rule></Style></Map>`,
	}
	for name, doc := range bad {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadString(doc, "", false); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadUnknownStyle(t *testing.T) {
	doc := `<Map><Layer name="l"><StyleName>x</StyleName><Datasource/></Layer></Map>`
	_, err := LoadString(doc, "", false)
	if !errors.Is(err, ErrUnknownStyle) {
		t.Errorf("got %v, want ErrUnknownStyle", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	m1, err := LoadString(sampleStyle, "", true)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "nested", "out.xml")
	if err := Save(m1, path); err != nil {
		t.Fatal(err)
	}
	data1, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	m2, err := Load(path, true)
	if err != nil {
		t.Fatalf("reloading saved map: %v\n%s", err, data1)
	}
	data2, err := Marshal(m2)
	if err != nil {
		t.Fatal(err)
	}
	if string(data1) != string(data2) {
		t.Errorf("output is not stable:\n%s\n---\n%s", data1, data2)
	}

	s := string(data1)
	if !strings.HasPrefix(s, `<?xml version="1.0" encoding="utf-8"?>`) {
		t.Errorf("missing declaration:\n%s", s)
	}
	if strings.Contains(s, "<LineSymbolizer stroke=\"#000000\"") {
		t.Error("default attributes written")
	}
	if strings.Index(s, "<Style") > strings.Index(s, "<Layer") {
		t.Error("styles must come before layers")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#102030", color.NRGBA{0x10, 0x20, 0x30, 255}},
		{"#10203080", color.NRGBA{0x10, 0x20, 0x30, 0x80}},
		{"rgb(1, 2, 3)", color.NRGBA{1, 2, 3, 255}},
		{"rgb(100%,0%,50%)", color.NRGBA{255, 0, 128, 255}},
		{"rgba(1,2,3,0.5)", color.NRGBA{1, 2, 3, 128}},
		{"Red", color.NRGBA{255, 0, 0, 255}},
		{"transparent", color.NRGBA{}},
	}
	for _, test := range tests {
		got, err := ParseColor(test.in)
		if err != nil {
			t.Errorf("%q: %v", test.in, err)
			continue
		}
		if got != test.want {
			t.Errorf("%q: got %v, want %v", test.in, got, test.want)
		}
		if back, _ := ParseColor(FormatColor(got)); back != got {
			t.Errorf("%q: format round trip gave %v", test.in, back)
		}
	}

	for _, in := range []string{"", "#12", "#gggggg", "rgb(1,2)", "rgb(300,0,0)", "ultraviolet"} {
		if _, err := ParseColor(in); err == nil {
			t.Errorf("%q: expected an error", in)
		}
	}
}

func TestFilter(t *testing.T) {
	props := map[string]any{"highway": "primary", "lanes": 2.0, "ref": "7"}
	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"[highway] = 'primary'", true},
		{"[highway] != 'primary'", false},
		{"[highway] <> 'motorway'", true},
		{"[lanes] >= 2", true},
		{"[lanes] gt 2", false},
		{"[ref] = 7", true},
		{"[ref] < 10", true},
		{"[missing] = 'x'", false},
		{"[missing] != 'x'", true},
		{"[lanes] = 1 or [highway] = 'primary'", true},
		{"[lanes] = 1 and [highway] = 'primary'", false},
		{"([lanes] = 1 or [lanes] = 2) and [highway] = \"primary\"", true},
		{"[lanes] = 2 && [ref] = '7'", true},
	}
	for _, test := range tests {
		f, err := ParseFilter(test.expr)
		if err != nil {
			t.Errorf("%q: %v", test.expr, err)
			continue
		}
		if got := f.Match(props); got != test.want {
			t.Errorf("%q: got %t, want %t", test.expr, got, test.want)
		}

		// the canonical form must parse to an equivalent filter
		g, err := ParseFilter(f.String())
		if err != nil {
			t.Errorf("%q: reparsing %q: %v", test.expr, f.String(), err)
			continue
		}
		if g.String() != f.String() || g.Match(props) != test.want {
			t.Errorf("%q: canonical form %q changes meaning", test.expr, f.String())
		}
	}

	for _, expr := range []string{"[a", "[a] =", "[a] ~ 1", "'x' = [a]", "[a] = 1 [b] = 2", "([a] = 1"} {
		if _, err := ParseFilter(expr); err == nil {
			t.Errorf("%q: expected an error", expr)
		}
	}
}
