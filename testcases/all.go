package testcases

// Size sets shared between several catalog entries.
var (
	DefaultSizes = []Size{{500, 100}}

	SizesManyInBigRange = []Size{
		{800, 100}, {600, 100}, {400, 100},
		{300, 100}, {250, 100}, {150, 100}, {100, 100},
	}

	SizesFewSquare = []Size{{800, 800}, {600, 600}, {400, 400}, {200, 200}}

	SizesManyInSmallRange = []Size{
		{490, 100}, {495, 100}, {497, 100}, {498, 100}, {499, 100},
		{500, 100}, {501, 100}, {502, 100}, {505, 100}, {510, 100},
	}
)

// DefaultTextBox is the viewport used by most text placement cases.
var DefaultTextBox = box(-0.05, -0.01, 0.95, 0.01)

// All contains the full catalog, in the order in which cases are run.
var All = []Case{
	{Name: "list", Sizes: SizesManyInBigRange, BBox: DefaultTextBox},
	{Name: "simple", Sizes: SizesManyInBigRange, BBox: DefaultTextBox},
	{Name: "lines-1", Sizes: SizesFewSquare, BBox: DefaultTextBox},
	{Name: "lines-2", Sizes: SizesFewSquare, BBox: DefaultTextBox},
	{Name: "lines-3", Sizes: SizesFewSquare, BBox: DefaultTextBox},
	{Name: "lines-4", Sizes: SizesFewSquare},
	{Name: "lines-5", Sizes: SizesFewSquare},
	{Name: "lines-6", Sizes: SizesFewSquare},
	{Name: "lines-shield", Sizes: SizesFewSquare, BBox: DefaultTextBox},
	{Name: "simple-E", BBox: box(-0.05, -0.01, 0.95, 0.01)},
	{Name: "simple-NE", BBox: DefaultTextBox},
	{Name: "simple-NW", BBox: DefaultTextBox},
	{Name: "simple-N", BBox: DefaultTextBox},
	{Name: "simple-SE", BBox: DefaultTextBox},
	{Name: "simple-SW", BBox: DefaultTextBox},
	{Name: "simple-S", BBox: DefaultTextBox},
	{Name: "simple-W", BBox: DefaultTextBox},
	{Name: "formatting-1", BBox: DefaultTextBox},
	{Name: "formatting-2", BBox: DefaultTextBox},
	{Name: "formatting-3", BBox: DefaultTextBox},
	{Name: "formatting-4", BBox: DefaultTextBox},
	{Name: "formatting", BBox: DefaultTextBox},
	{Name: "expressionformat", BBox: DefaultTextBox},
	{Name: "shieldsymbolizer-1", Sizes: SizesManyInSmallRange, BBox: DefaultTextBox},
	{Name: "rtl-point", Sizes: []Size{{200, 200}}, BBox: DefaultTextBox},
	{Name: "jalign-auto", Sizes: []Size{{200, 200}}, BBox: DefaultTextBox},
	{Name: "line-offset", Sizes: []Size{{900, 250}}, BBox: box(-5.192, 50.189, -5.174, 50.195)},
	{Name: "tiff-alpha-gdal", Sizes: []Size{{600, 400}}},
	{Name: "tiff-alpha-raster", Sizes: []Size{{600, 400}}},
	{Name: "shieldsymbolizer-2"},
	{Name: "shieldsymbolizer-3"},
	{Name: "shieldsymbolizer-4"},
	{Name: "orientation", Sizes: []Size{{800, 200}}},
	{Name: "hb-fontsets", Sizes: []Size{{800, 200}}},
	{Name: "charspacing", Sizes: []Size{{200, 400}}},
	{Name: "line_break", Sizes: []Size{{800, 800}}},
}
