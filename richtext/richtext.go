// Package richtext prepares stored post HTML for display. It anchors
// headings, marks external links and, when asked to, wires math markup up to
// KaTeX.
package richtext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	katexCSS   = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.css"
	katexJS    = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.js"
	mathLoader = "/public/math.js"
)

// CDNOrigin is the origin KaTeX assets are loaded from; the content security
// policy must allow it.
const CDNOrigin = "https://cdn.jsdelivr.net"

// Options tune rendering.
type Options struct {
	// Math enables processing of language-math nodes.
	Math bool
}

// Render returns a component writing the processed content.
func Render(content string, opts Options) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := Process(content, opts)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

// Process rewrites an HTML fragment and returns the result.
func Process(content string, opts Options) (string, error) {
	parent := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), parent)
	if err != nil {
		return "", fmt.Errorf("richtext: parse: %w", err)
	}

	p := &processor{opts: opts, ids: make(map[string]int)}
	for _, n := range nodes {
		p.collectIDs(n)
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		p.walk(n)
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("richtext: render: %w", err)
		}
	}
	if opts.Math {
		buf.WriteString(`<link rel="stylesheet" href="` + katexCSS + `" crossorigin="anonymous"/>`)
		buf.WriteString(`<script defer src="` + katexJS + `" crossorigin="anonymous"></script>`)
		buf.WriteString(`<script defer src="` + mathLoader + `"></script>`)
	}
	return buf.String(), nil
}

type processor struct {
	opts Options
	ids  map[string]int
}

func (p *processor) collectIDs(n *html.Node) {
	if n.Type == html.ElementNode {
		if id, ok := attr(n, "id"); ok && id != "" {
			p.ids[id]++
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.collectIDs(c)
	}
}

func (p *processor) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			if _, ok := attr(n, "id"); !ok {
				if id := p.uniqueID(slug(textContent(n))); id != "" {
					n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: id})
				}
			}
		case atom.A:
			if href, _ := attr(n, "href"); isExternal(href) {
				setAttr(n, "target", "_blank")
				setAttr(n, "rel", "noopener noreferrer")
			}
		case atom.Img:
			if _, ok := attr(n, "loading"); !ok {
				n.Attr = append(n.Attr, html.Attribute{Key: "loading", Val: "lazy"})
			}
		}
		if p.opts.Math {
			if kind := mathKind(n); kind != "" {
				setAttr(n, "data-math", kind)
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *processor) uniqueID(base string) string {
	if base == "" {
		return ""
	}
	id := base
	for i := 2; p.ids[id] > 0; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	p.ids[id]++
	return id
}

// mathKind reports "inline" or "display" for language-math nodes.
func mathKind(n *html.Node) string {
	class, _ := attr(n, "class")
	fields := strings.Fields(class)
	isMath := false
	kind := "inline"
	for _, f := range fields {
		switch f {
		case "language-math":
			isMath = true
		case "math-display":
			kind = "display"
		}
	}
	if !isMath {
		return ""
	}
	return kind
}

func isExternal(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(h, "http://") || strings.HasPrefix(h, "https://")
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return b.String()
}

// slug lowercases letters and digits of any script and joins runs of other
// characters with single hyphens.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
