// Package parsing turns the markdown that users write into HTML. Raw HTML in
// the source is escaped, never passed through.
package parsing

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/redaction"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/util"
)

// Used for the HTML of posts and answers.
var ForumMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlightExtension,
	),
)

// Used for plain-text excerpts of posts.
var PlaintextMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRenderer(plaintextRenderer{}),
)

func ParseMarkdown(source string, md goldmark.Markdown) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		panic(err)
	}

	return buf.String()
}

// The HTML readers see for an answer. Redacted answers render their
// replacement text; the original body never reaches the page.
func RenderAnswer(answer *models.Answer) string {
	return ParseMarkdown(redaction.RenderedBody(answer), ForumMarkdown)
}

// A plain-text excerpt of at most maxRunes runes, cut on a word boundary
// where possible.
func Excerpt(source string, maxRunes int) string {
	text := strings.Join(strings.Fields(ParseMarkdown(source, PlaintextMarkdown)), " ")
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)[:maxRunes]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

var highlightExtension = highlighting.NewHighlighting(
	highlighting.WithFormatOptions(ChromaOptions...),
	highlighting.WithWrapperRenderer(func(w util.BufWriter, context highlighting.CodeBlockContext, entering bool) {
		if entering {
			w.WriteString(`<pre class="qa-code">`)
		} else {
			w.WriteString(`</pre>`)
		}
	}),
)
