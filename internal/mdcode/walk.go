package mdcode

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Walker is called for each fenced code block of a Markdown document, in
// document order. Changes the walker makes to block.Code are written back by
// [Walk].
type Walker func(block *Block) error

// edit replaces source[start:stop] with a block's new code. Every new line
// that starts a source line is prefixed with indent, the container prefix
// (list indentation, blockquote markers) goldmark leaves out of segments.
type edit struct {
	start, stop int
	lineStart   int
	indent      []byte
	leading     bool
	code        []byte
}

// Walk parses a Markdown document and calls walker for every fenced code block.
// If the walker modified any block's Code, Walk returns true and the updated
// document. Otherwise it returns false and a nil slice.
func Walk(source []byte, walker Walker) (bool, []byte, error) {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	lines := newLineIndex(source)

	var (
		edits []edit
		index int
	)

	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			return ast.WalkContinue, nil
		}

		fcb := fencedCodeBlock(node, source)
		if fcb == nil {
			return ast.WalkContinue, nil
		}

		block, err := newBlock(fcb, source, lines)
		if err != nil {
			return ast.WalkStop, fmt.Errorf("block %d: %w", index, err)
		}

		block.Index = index
		index++

		code := block.Code

		if err := walker(block); err != nil {
			return ast.WalkStop, err
		}

		if e, ok := newEdit(fcb, source, lines); ok && !bytes.Equal(code, block.Code) {
			e.code = block.Code
			edits = append(edits, e)
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return false, nil, err
	}

	if len(edits) == 0 {
		return false, nil, nil
	}

	return true, applyEdits(source, edits), nil
}

func fencedCodeBlock(node ast.Node, source []byte) *ast.FencedCodeBlock {
	switch n := node.(type) {
	case *ast.FencedCodeBlock:
		return n
	case *ast.HTMLBlock:
		return commentedCodeBlock(n, source)
	}

	return nil
}

func newEdit(fcb *ast.FencedCodeBlock, source []byte, lines lineIndex) (edit, bool) {
	segs := fcb.Lines()

	if segs.Len() == 0 {
		if fcb.Info == nil {
			return edit{}, false
		}

		fence := source[lines.start(fcb.Info.Segment.Start):fcb.Info.Segment.Start]
		pos := fcb.Info.Segment.Stop + 1

		return edit{
			start:     pos,
			stop:      pos,
			lineStart: pos,
			indent:    fence[:len(fence)-len(bytes.TrimLeft(fence, " \t>"))],
			leading:   true,
		}, true
	}

	first := segs.At(0)
	last := segs.At(segs.Len() - 1)

	lineStart := lines.start(first.Start)

	return edit{
		start:     first.Start,
		stop:      last.Stop,
		lineStart: lineStart,
		indent:    source[lineStart:first.Start],
	}, true
}

func (e edit) writeTo(buf *bytes.Buffer) {
	blank := bytes.TrimRight(e.indent, " \t")

	for i, line := range bytes.SplitAfter(e.code, []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		switch {
		case i == 0 && !e.leading:
		case line[0] == '\n':
			buf.Write(blank)
		default:
			buf.Write(e.indent)
		}

		buf.Write(line)
	}
}

func applyEdits(source []byte, edits []edit) []byte {
	var buf bytes.Buffer

	pos := 0

	for _, e := range edits {
		start := e.start
		if len(e.code) == 0 {
			start = e.lineStart
		}

		buf.Write(source[pos:start])
		e.writeTo(&buf)

		pos = e.stop
	}

	buf.Write(source[pos:])

	return buf.Bytes()
}

func newBlock(fcb *ast.FencedCodeBlock, source []byte, lines lineIndex) (*Block, error) {
	block := &Block{}

	if fcb.Info != nil {
		var err error

		block.Lang, block.Meta, err = parseInfo(fcb.Info.Text(source))
		if err != nil {
			return nil, err
		}
	}

	var code bytes.Buffer

	segs := fcb.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		code.Write(seg.Value(source))
	}

	block.Code = code.Bytes()

	switch {
	case fcb.Info != nil:
		block.StartLine = lines.at(fcb.Info.Segment.Start)
	case segs.Len() > 0:
		block.StartLine = lines.at(segs.At(0).Start) - 1
	}

	switch {
	case segs.Len() > 0:
		block.EndLine = lines.at(segs.At(segs.Len() - 1).Stop)
	case block.StartLine > 0:
		block.EndLine = block.StartLine + 1
	}

	return block, nil
}

// lineIndex holds the offset of every line break in a document.
type lineIndex []int

func newLineIndex(source []byte) lineIndex {
	var idx lineIndex

	for i, c := range source {
		if c == '\n' {
			idx = append(idx, i)
		}
	}

	return idx
}

// at returns the 1-based line number of offset.
func (idx lineIndex) at(offset int) int {
	return sort.SearchInts(idx, offset) + 1
}

// start returns the offset of the first byte of the line holding offset.
func (idx lineIndex) start(offset int) int {
	n := sort.SearchInts(idx, offset)
	if n == 0 {
		return 0
	}

	return idx[n-1] + 1
}

var reInfo = regexp.MustCompile(`\s*(\w+)\s*(.*)\s*`)

func parseInfo(info []byte) (string, Meta, error) {
	all := reInfo.FindSubmatch(info)
	if all == nil {
		return "", nil, nil
	}

	meta, err := parseMeta(all[2])
	if err != nil {
		return "", nil, fmt.Errorf("info string %q: %w", info, err)
	}

	return string(all[1]), meta, nil
}

var (
	reCommentedCodeBlock = regexp.MustCompile(`^\s*(<!--)?\s*<script\s*type=["']text/markdown["']\s*>\s*$`)
	reFences             = regexp.MustCompile("^\\s*```")
)

// commentedCodeBlock recognizes a fenced block wrapped in
// <script type="text/markdown">, which renders hidden on most hosts.
func commentedCodeBlock(html *ast.HTMLBlock, source []byte) *ast.FencedCodeBlock {
	const minLines = 3

	lines := html.Lines()
	if lines.Len() < minLines {
		return nil
	}

	first := lines.At(0)
	if !reCommentedCodeBlock.Match(first.Value(source)) {
		return nil
	}

	open := lines.At(1)
	closing := lines.At(lines.Len() - 1)

	loc := reFences.FindIndex(open.Value(source))
	if loc == nil || !reFences.Match(closing.Value(source)) {
		return nil
	}

	fcb := ast.NewFencedCodeBlock(ast.NewTextSegment(text.NewSegment(open.Start+loc[1], open.Stop-1)))

	segs := text.NewSegments()
	for i := 2; i < lines.Len()-1; i++ {
		segs.Append(lines.At(i))
	}

	fcb.SetLines(segs)

	return fcb
}
