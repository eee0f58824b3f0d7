package parsing

import (
	"io"
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
)

// Renders only the text of a document, with each block separated by a space.
type plaintextRenderer struct{}

var _ renderer.Renderer = plaintextRenderer{}

var backslashEscape = regexp.MustCompile("\\\\([\\\\\\x60!\"#$%&'()*+,-./:;<=>?@\\[\\]^_{|}~])")

func (r plaintextRenderer) Render(w io.Writer, source []byte, n ast.Node) error {
	return ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		var out []byte
		switch n := n.(type) {
		case *ast.Text:
			out = backslashEscape.ReplaceAll(n.Text(source), []byte("$1"))
			if n.SoftLineBreak() || n.HardLineBreak() {
				out = append(out, ' ')
			}
		case *ast.CodeSpan:
			out = n.Text(source)
			_, err := w.Write(out)
			return ast.WalkSkipChildren, err
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			out = []byte(" ")
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				out = append(out, seg.Value(source)...)
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			out = []byte(" ")
		}

		if len(out) > 0 {
			if _, err := w.Write(out); err != nil {
				return ast.WalkStop, err
			}
		}
		return ast.WalkContinue, nil
	})
}

func (r plaintextRenderer) AddOptions(...renderer.Option) {}
