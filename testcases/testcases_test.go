package testcases

import (
	"slices"
	"strings"
	"testing"
)

func TestCatalogNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range All {
		if seen[c.Name] {
			t.Errorf("duplicate catalog entry %q", c.Name)
		}
		seen[c.Name] = true
	}
}

func TestSelectSingleByName(t *testing.T) {
	for _, c := range All {
		active := Select(All, Selection{Single: c.Name})
		if len(active) != 1 {
			t.Fatalf("%s: got %d cases, want 1", c.Name, len(active))
		}
		if active[0].Name != c.Name {
			t.Errorf("%s: got case %q", c.Name, active[0].Name)
		}
	}

	if active := Select(All, Selection{Single: "no-such-style"}); len(active) != 0 {
		t.Errorf("unknown name selected %d cases", len(active))
	}
}

func TestSelectFullCatalog(t *testing.T) {
	active := Select(All, Selection{})
	if len(active) != len(All) {
		t.Fatalf("got %d cases, want %d", len(active), len(All))
	}
	for i := range All {
		if active[i].Name != All[i].Name {
			t.Errorf("case %d: got %q, want %q", i, active[i].Name, All[i].Name)
		}
	}
}

func TestSelectOneNameUsesSquareSizes(t *testing.T) {
	active := Select(All, Selection{Names: []string{"simple"}})
	if len(active) != 1 {
		t.Fatalf("got %d cases, want 1", len(active))
	}
	c := active[0].Resolve()
	want := []Size{{800, 800}, {600, 600}, {400, 400}, {200, 200}}
	if !slices.Equal(c.Sizes, want) {
		t.Errorf("sizes = %v, want %v", c.Sizes, want)
	}
	if c.BBox != nil {
		t.Errorf("bbox = %v, want nil", c.BBox)
	}
}

func TestSelectSeveralNamesUseDefaults(t *testing.T) {
	// "simple" declares its own sizes in the catalog; they are not used here.
	active := Select(All, Selection{Names: []string{"simple", "lines-1", "unknown"}})
	if len(active) != 3 {
		t.Fatalf("got %d cases, want 3", len(active))
	}
	for _, c := range active {
		r := c.Resolve()
		if !slices.Equal(r.Sizes, []Size{{500, 100}}) {
			t.Errorf("%s: sizes = %v, want default", c.Name, r.Sizes)
		}
		if r.BBox != nil {
			t.Errorf("%s: unexpected bbox", c.Name)
		}
	}
}

func TestResolveDefaults(t *testing.T) {
	for _, c := range All {
		r := c.Resolve()
		if len(c.Sizes) == 0 && !slices.Equal(r.Sizes, DefaultSizes) {
			t.Errorf("%s: sizes = %v, want %v", c.Name, r.Sizes, DefaultSizes)
		}
		if c.BBox == nil && r.BBox != nil {
			t.Errorf("%s: bbox appeared during resolve", c.Name)
		}
	}

	// Resolve must not alias the shared size sets.
	r := Case{Name: "x"}.Resolve()
	r.Sizes[0].Width = 1
	if DefaultSizes[0].Width != 500 {
		t.Error("Resolve aliases DefaultSizes")
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args   []string
		single string
		names  []string
		quiet  bool
	}{
		{nil, "", nil, false},
		{[]string{"-q"}, "", nil, true},
		{[]string{"simple"}, "", []string{"simple"}, false},
		{[]string{"simple", "-q"}, "", []string{"simple"}, true},
		{[]string{"-s", "lines-1"}, "lines-1", nil, false},
		{[]string{"-q", "-s", "lines-1", "extra"}, "lines-1", nil, true},
		{[]string{"a", "b", "c"}, "", []string{"a", "b", "c"}, false},
		{[]string{"-s"}, "", []string{"-s"}, false},
	}
	for _, test := range tests {
		t.Run(strings.Join(test.args, "_"), func(t *testing.T) {
			sel, quiet := ParseArgs(test.args)
			if sel.Single != test.single {
				t.Errorf("single = %q, want %q", sel.Single, test.single)
			}
			if !slices.Equal(sel.Names, test.names) {
				t.Errorf("names = %v, want %v", sel.Names, test.names)
			}
			if quiet != test.quiet {
				t.Errorf("quiet = %t, want %t", quiet, test.quiet)
			}
		})
	}
}

func TestParseCatalog(t *testing.T) {
	const data = `cases:
  - name: lines-1
    sizes: few_square
    bbox: [-0.05, -0.01, 0.95, 0.01]
  - name: orientation
    sizes: [[800, 200]]
  - name: plain
`
	cases, err := ParseCatalog(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 3 {
		t.Fatalf("got %d cases, want 3", len(cases))
	}
	if !slices.Equal(cases[0].Sizes, SizesFewSquare) {
		t.Errorf("lines-1 sizes = %v", cases[0].Sizes)
	}
	if cases[0].BBox == nil || cases[0].BBox.URx != 0.95 {
		t.Errorf("lines-1 bbox = %v", cases[0].BBox)
	}
	if !slices.Equal(cases[1].Sizes, []Size{{800, 200}}) {
		t.Errorf("orientation sizes = %v", cases[1].Sizes)
	}
	if cases[2].Sizes != nil || cases[2].BBox != nil {
		t.Errorf("plain = %+v, want no sizes and no bbox", cases[2])
	}
}

func TestParseCatalogErrors(t *testing.T) {
	bad := map[string]string{
		"unknown_field": "cases:\n  - name: a\n    zoom: 3\n",
		"unknown_set":   "cases:\n  - name: a\n    sizes: huge\n",
		"bad_pair":      "cases:\n  - name: a\n    sizes: [[1, 2, 3]]\n",
		"missing_name":  "cases:\n  - sizes: default\n",
		"duplicate":     "cases:\n  - name: a\n  - name: a\n",
		"short_bbox":    "cases:\n  - name: a\n    bbox: [0, 0, 1]\n",
		"empty_bbox":    "cases:\n  - name: a\n    bbox: [1, 0, 1, 1]\n",
	}
	for name, data := range bad {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCatalog(strings.NewReader(data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
