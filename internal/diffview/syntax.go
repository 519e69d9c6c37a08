package diffview

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	gocache "github.com/patrickmn/go-cache"
)

type syntaxSpan struct {
	start int
	end   int
	token chroma.TokenType
}

// Highlighter colours single lines of code with a chroma theme. Results are
// cached per (file type, line).
type Highlighter struct {
	style *chroma.Style
	cache *gocache.Cache
}

// NewHighlighter returns a highlighter for the named chroma style. Unknown
// names fall back to chroma's default.
func NewHighlighter(theme string) *Highlighter {
	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}
	return &Highlighter{
		style: style,
		cache: gocache.New(10*time.Minute, 15*time.Minute),
	}
}

// Highlight returns code with ANSI colouring for the language of path.
func (h *Highlighter) Highlight(path, code string) string {
	if h == nil || code == "" {
		return code
	}
	key := filepath.Ext(path) + "\x00" + code
	if v, ok := h.cache.Get(key); ok {
		return v.(string)
	}

	spans := syntaxSpansForPath(path, code)
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		if s.start > pos {
			b.WriteString(code[pos:s.start])
		}
		b.WriteString(h.styleFor(s.token).Render(code[s.start:s.end]))
		pos = s.end
	}
	b.WriteString(code[pos:])

	out := b.String()
	h.cache.Set(key, out, gocache.DefaultExpiration)
	return out
}

func (h *Highlighter) styleFor(tt chroma.TokenType) lipgloss.Style {
	entry := h.style.Get(tt)
	st := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		st = st.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	return st
}

// syntaxSpansForPath tokenises one line and returns the byte ranges of every
// token that is not plain text.
func syntaxSpansForPath(path, code string) []syntaxSpan {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil
	}

	var spans []syntaxSpan
	pos := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		start := pos
		pos += len(tok.Value)
		if start >= len(code) {
			break
		}
		end := pos
		if end > len(code) {
			end = len(code)
		}
		if tok.Type.InCategory(chroma.Text) {
			continue
		}
		if strings.TrimSpace(code[start:end]) == "" {
			continue
		}
		spans = append(spans, syntaxSpan{start: start, end: end, token: tok.Type})
	}
	return spans
}
