package parsing

import "github.com/alecthomas/chroma/formatters/html"

// Code is highlighted with CSS classes rather than inline styles, and without
// chroma's own <pre>, since the highlighting wrapper writes one.
var ChromaOptions = []html.Option{
	html.WithClasses(true),
	html.WithPreWrapper(noPreWrapper{}),
}

type noPreWrapper struct{}

var _ html.PreWrapper = noPreWrapper{}

func (noPreWrapper) Start(code bool, styleAttr string) string { return "" }

func (noPreWrapper) End(code bool) string { return "" }
