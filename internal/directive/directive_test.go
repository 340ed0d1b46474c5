package directive

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/ezerfernandes/mdmark/internal/marker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roles(res *Result) []Role {
	out := make([]Role, len(res.Lines))
	for i, l := range res.Lines {
		out[i] = l.Role
	}

	return out
}

func requireCoverage(t *testing.T, res *Result) {
	t.Helper()

	n := 0
	if len(res.Body) != 0 {
		n = strings.Count(res.Body, "\n") + 1
	}

	require.Len(t, res.Lines, n)

	for i, l := range res.Lines {
		require.Equal(t, i, l.Index)
	}

	for _, s := range res.Sections {
		require.Equal(t, Marker, res.Lines[s.StartLine].Role)
		require.Equal(t, Marker, res.Lines[s.EndLine].Role)
	}
}

func TestParse_FilenameRoundTrip(t *testing.T) {
	res := Parse("javascript", "// filename: app.js\nconsole.log(1)")

	require.Equal(t, "app.js", res.FileTitle)
	require.Equal(t, "console.log(1)", res.Body)
	require.False(t, res.HasHighlights)
	require.Equal(t, []Role{Body}, roles(res))
	requireCoverage(t, res)
}

func TestParse_Filename(t *testing.T) {
	tests := []struct {
		name  string
		lang  string
		text  string
		title string
		body  string
	}{
		{
			name:  "blank_line_after_header_is_dropped",
			lang:  "go",
			text:  "// filename: main.go\n\npackage main",
			title: "main.go",
			body:  "package main",
		},
		{
			name:  "header_in_the_middle",
			lang:  "go",
			text:  "package main\n// filename: main.go\nfunc main() {}",
			title: "main.go",
			body:  "package main\nfunc main() {}",
		},
		{
			name:  "header_on_last_line",
			lang:  "go",
			text:  "package main\n// filename: main.go",
			title: "main.go",
			body:  "package main",
		},
		{
			name:  "markup",
			lang:  "html",
			text:  "<!-- filename: index.html -->\n<!DOCTYPE html>",
			title: "index.html",
			body:  "<!DOCTYPE html>",
		},
		{
			name:  "hash",
			lang:  "python",
			text:  "# filename: app.py\ndef hello():\n    pass",
			title: "app.py",
			body:  "def hello():\n    pass",
		},
		{
			name:  "only_first_header_is_taken",
			lang:  "go",
			text:  "// filename: a.go\n// filename: b.go",
			title: "a.go",
			body:  "// filename: b.go",
		},
		{
			name: "no_header",
			lang: "go",
			text: "fmt.Println()",
			body: "fmt.Println()",
		},
		{
			name:  "header_only",
			lang:  "go",
			text:  "// filename: empty.go",
			title: "empty.go",
			body:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.lang, tt.text)

			require.Equal(t, tt.title, res.FileTitle)
			require.Equal(t, tt.body, res.Body)
			requireCoverage(t, res)
		})
	}
}

func TestParse_BalancedSection(t *testing.T) {
	res := Parse("javascript", "a\n// [add]\nb\nc\n// [/add]\nd")

	require.True(t, res.HasHighlights)
	require.Equal(t, []Section{{Kind: marker.Add, StartLine: 1, EndLine: 4, Content: "b\nc"}}, res.Sections)
	require.Equal(t, []Role{Body, Marker, Highlighted, Highlighted, Marker, Body}, roles(res))
	require.Equal(t, marker.Add, res.Lines[2].Kind)
	require.Equal(t, marker.Add, res.Lines[3].Kind)
	require.Equal(t, "a\nb\nc\nd", res.Code())
	requireCoverage(t, res)
}

func TestParse_UnterminatedRegion(t *testing.T) {
	res := Parse("go", "a\n// [modify]\nb\nc")

	require.True(t, res.HasHighlights)
	require.Empty(t, res.Sections)
	require.Equal(t, []Role{Body, Marker, Highlighted, Highlighted}, roles(res))
	require.Equal(t, marker.Modify, res.Lines[3].Kind)
	requireCoverage(t, res)
}

func TestParse_StrayCloseIsBody(t *testing.T) {
	res := Parse("go", "// [/highlight]")

	require.False(t, res.HasHighlights)
	require.Empty(t, res.Sections)
	require.Equal(t, []Role{Body}, roles(res))
	require.Equal(t, "// [/highlight]", res.Code())
}

func TestParse_CloseOfAnotherKindClosesOpenRegion(t *testing.T) {
	res := Parse("go", "// [modify]\nx\n// [/remove]\ny")

	require.Equal(t, []Section{{Kind: marker.Modify, StartLine: 0, EndLine: 2, Content: "x"}}, res.Sections)
	require.Equal(t, []Role{Marker, Highlighted, Marker, Body}, roles(res))
}

func TestParse_NestedOpenReplacesPendingRegion(t *testing.T) {
	res := Parse("go", "// [add]\na\n// [remove]\nb\n// [/remove]")

	require.Equal(t, []Section{{Kind: marker.Remove, StartLine: 2, EndLine: 4, Content: "b"}}, res.Sections)
	require.Equal(t, []Role{Marker, Highlighted, Marker, Highlighted, Marker}, roles(res))
	require.Equal(t, marker.Add, res.Lines[1].Kind)
	require.Equal(t, marker.Remove, res.Lines[3].Kind)
	requireCoverage(t, res)
}

func TestParse_MultipleSectionsInClosingOrder(t *testing.T) {
	res := Parse("go", "// [add]\na\n// [/add]\nmid\n// [add]\nb\nc\n// [/add]")

	require.Len(t, res.Sections, 2)
	require.Equal(t, Section{Kind: marker.Add, StartLine: 0, EndLine: 2, Content: "a"}, res.Sections[0])
	require.Equal(t, Section{Kind: marker.Add, StartLine: 4, EndLine: 7, Content: "b\nc"}, res.Sections[1])
	require.Len(t, res.Highlighted(marker.Add), 2)
	require.Empty(t, res.Highlighted(marker.Remove))
	requireCoverage(t, res)
}

func TestParse_EmptySection(t *testing.T) {
	res := Parse("go", "// [highlight]\n// [/highlight]")

	require.Equal(t, []Section{{Kind: marker.Default, StartLine: 0, EndLine: 1, Content: ""}}, res.Sections)
	require.Equal(t, "", res.Code())
}

func TestParse_GrammarFallback(t *testing.T) {
	res := Parse("rust", "// filename: main.rs\nfn main() {\n    // [highlight]\n    println!(\"hi\");\n    // [/highlight]\n}")

	require.Equal(t, "main.rs", res.FileTitle)
	require.True(t, res.HasHighlights)
	require.Equal(t, []Section{{Kind: marker.Default, StartLine: 1, EndLine: 3, Content: "    println!(\"hi\");"}}, res.Sections)
	requireCoverage(t, res)
}

func TestParse_FamilyIsolation(t *testing.T) {
	res := Parse("python", "// [highlight]\nx = 1\n// [/highlight]")

	require.False(t, res.HasHighlights)
	require.Empty(t, res.Sections)
	require.Equal(t, []Role{Body, Body, Body}, roles(res))

	res = Parse("html", "<head>\n  <!-- [highlight] -->\n  <style></style>\n  <!-- [/highlight] -->\n</head>")

	require.Equal(t, []Section{{Kind: marker.Default, StartLine: 1, EndLine: 3, Content: "  <style></style>"}}, res.Sections)
}

func TestParse_Empty(t *testing.T) {
	res := Parse("go", "")

	require.Equal(t, "", res.Body)
	require.Empty(t, res.FileTitle)
	require.False(t, res.HasHighlights)
	require.Empty(t, res.Lines)
	require.Empty(t, res.Sections)
	require.Equal(t, "", res.Code())
}

func TestParse_Idempotent(t *testing.T) {
	text := "// filename: x.go\n// [add]\na\n// [/add]\n// [remove]\nb"

	require.Equal(t, Parse("go", text), Parse("go", text))
}

func TestParse_CRLF(t *testing.T) {
	res := Parse("go", "// filename: a.go\r\nx\r\n// [add]\r\ny\r\nz\r\n// [/add]\r\n")

	require.Equal(t, "a.go", res.FileTitle)
	require.Equal(t, []Section{{Kind: marker.Add, StartLine: 1, EndLine: 4, Content: "y\nz"}}, res.Sections)
	require.Equal(t, []Role{Body, Marker, Highlighted, Highlighted, Marker, Body}, roles(res))
	requireCoverage(t, res)
}

func TestLine_MarshalJSON(t *testing.T) {
	res := Parse("go", "a\n// [modify]\nb\n// [/modify]")

	data, err := json.Marshal(res.Lines)
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"index": 0, "role": "body"},
		{"index": 1, "role": "marker"},
		{"index": 2, "role": "highlighted", "kind": "modify"},
		{"index": 3, "role": "marker"}
	]`, string(data))

	data, err = json.Marshal(Line{Index: 0, Role: Highlighted, Kind: marker.Default})
	require.NoError(t, err)
	require.JSONEq(t, `{"index": 0, "role": "highlighted", "kind": "highlight"}`, string(data))
}

func TestCache(t *testing.T) {
	cache := NewCache()

	first, hit := cache.Parse("go", "// [add]\na\n// [/add]")
	require.False(t, hit)

	second, hit := cache.Parse("go", "// [add]\na\n// [/add]")
	require.True(t, hit)
	require.Same(t, first, second)

	other, hit := cache.Parse("python", "// [add]\na\n// [/add]")
	require.False(t, hit)
	require.False(t, other.HasHighlights)

	require.Equal(t, 2, cache.Len())
	require.Equal(t, 1, cache.Hits())
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache()
	want := Parse("go", "// [add]\na\n// [/add]")

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res, _ := cache.Parse("go", "// [add]\na\n// [/add]")
			assert.Equal(t, want, res)
		}()
	}

	wg.Wait()
	require.Equal(t, 1, cache.Len())
}
