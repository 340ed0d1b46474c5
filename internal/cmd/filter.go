package cmd

import (
	"fmt"

	"github.com/ezerfernandes/mdmark/internal/mdcode"
	"github.com/gobwas/glob"
)

// filterFunc decides whether a block, known by its title, is selected.
type filterFunc func(block *mdcode.Block, title string) bool

func compile(kind, pattern string) (glob.Glob, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, pattern, err)
	}

	return g, nil
}

func filter(lang []string, file string, meta map[string]string) (filterFunc, error) {
	langs := make([]glob.Glob, 0, len(lang))

	for _, pattern := range lang {
		g, err := compile("lang", pattern)
		if err != nil {
			return nil, err
		}

		langs = append(langs, g)
	}

	var title glob.Glob

	if len(file) != 0 {
		var err error

		if title, err = compile("file", file); err != nil {
			return nil, err
		}
	}

	metas := make(map[string]glob.Glob, len(meta))

	for key, pattern := range meta {
		g, err := compile("meta "+key, pattern)
		if err != nil {
			return nil, err
		}

		metas[key] = g
	}

	return func(block *mdcode.Block, name string) bool {
		if len(langs) != 0 && !matchAny(langs, block.Lang) {
			return false
		}

		if title != nil && !title.Match(name) {
			return false
		}

		for key, g := range metas {
			if !g.Match(block.Meta.Get(key)) {
				return false
			}
		}

		return true
	}, nil
}

func matchAny(globs []glob.Glob, value string) bool {
	for _, g := range globs {
		if g.Match(value) {
			return true
		}
	}

	return false
}
