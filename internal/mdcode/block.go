package mdcode

import (
	"strings"

	"github.com/ezerfernandes/mdmark/internal/directive"
)

// MetaFile is the info-string key naming the file a block belongs to.
const MetaFile = "file"

// Block is a fenced code block. Index is its position among all fenced blocks
// of the document, StartLine and EndLine are 1-based fence line numbers.
type Block struct {
	Index     int
	Lang      string
	Meta      Meta
	Code      []byte
	StartLine int
	EndLine   int
}

type Blocks []*Block

// Text returns the block content without its final line break.
func (b *Block) Text() string {
	text := strings.TrimSuffix(string(b.Code), "\n")

	return strings.TrimSuffix(text, "\r")
}

// Directives parses the block's annotations. A nil cache parses every time.
func (b *Block) Directives(cache *directive.Cache) *directive.Result {
	if cache == nil {
		return directive.Parse(b.Lang, b.Text())
	}

	res, _ := cache.Parse(b.Lang, b.Text())

	return res
}

// Title names the block: the filename directive wins over the file= meta.
func (b *Block) Title(res *directive.Result) string {
	if res != nil && len(res.FileTitle) != 0 {
		return res.FileTitle
	}

	return b.Meta.Get(MetaFile)
}

// SetText replaces the block content, keeping the closing fence on its own line.
func (b *Block) SetText(text string) {
	if len(text) == 0 {
		b.Code = nil

		return
	}

	b.Code = []byte(text + "\n")
}
