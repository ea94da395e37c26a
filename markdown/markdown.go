// Package markdown converts the markdown dialect used by mempool articles to
// HTML. Besides the usual block and inline elements it understands dollar
// math, footnotes, definition lists and a leading YAML front matter block.
package markdown

import (
	"bytes"
	"html"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`_([^_]+)_`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrderedList      = regexp.MustCompile(`^(\d+)\.\s`)
	reFootnoteRef      = regexp.MustCompile(`\[\^([^\]\s]+)\]`)
	reFootnoteDef      = regexp.MustCompile(`^\[\^([^\]\s]+)\]:\s?(.*)$`)
	// ![alt](url){style} or ![alt](url){style|width|height}
	reImgStyled = regexp.MustCompile(`\!\[(.*?)\]\((.*?)\)\{([^|}]*?)(?:\|(\d+)\|(\d+))?\}`)
	reImg       = regexp.MustCompile(`\!\[(.*?)\]\((.*?)\)`)
)

// Result is a rendered document.
type Result struct {
	HTML    string
	HasMath bool
}

// Render converts md to HTML.
func Render(md string) Result {
	r := newRenderer()
	r.render(md)
	return Result{HTML: r.buf.String(), HasMath: r.hasMath}
}

// FormatInline applies inline formatting (code, math, footnote references,
// links, images, emphasis) to a single line.
func FormatInline(s string) string {
	return newRenderer().inline(s)
}

type footnote struct {
	id   string // HTML-escaped, same as the keys of refs
	body string
}

type renderer struct {
	buf bytes.Buffer

	para      []string
	inList    bool
	inOrdered bool
	inQuote   bool
	inCode    bool
	codeLang  bool // current code block carries a language badge
	inMath    bool
	mathLines []string
	inTable   bool
	tableBody bool
	inDefList bool

	hasMath   bool
	images    int
	stash     []string
	refs      map[string]int
	footnotes []footnote
}

func newRenderer() *renderer {
	return &renderer{refs: make(map[string]int)}
}

func (r *renderer) render(md string) {
	for _, raw := range strings.Split(md, "\n") {
		r.line(strings.TrimRight(raw, "\r"))
	}
	r.flushAll()
	r.flushCode()
	r.flushMath()
	r.writeFootnotes()
}

func (r *renderer) line(line string) {
	trimmed := strings.TrimSpace(line)

	if r.inMath {
		if strings.HasSuffix(trimmed, "$$") {
			if rest := strings.TrimSpace(strings.TrimSuffix(trimmed, "$$")); rest != "" {
				r.mathLines = append(r.mathLines, rest)
			}
			r.flushMath()
			return
		}
		r.mathLines = append(r.mathLines, line)
		return
	}

	if strings.HasPrefix(line, "```") {
		if r.inCode {
			r.flushCode()
			return
		}
		r.flushAll()
		lang := strings.TrimSpace(line[3:])
		if lang != "" {
			r.codeLang = true
			escapedLang := html.EscapeString(lang)
			r.buf.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + escapedLang + `">` + escapedLang + `</span>`)
			r.buf.WriteString(`<pre class="code-block"><code class="language-` + escapedLang + `">`)
		} else {
			r.buf.WriteString(`<pre class="code-block"><code>`)
		}
		r.inCode = true
		return
	}
	if r.inCode {
		r.buf.WriteString(html.EscapeString(line))
		r.buf.WriteString("\n")
		return
	}

	if strings.HasPrefix(trimmed, "$$") {
		r.flushAll()
		body := strings.TrimPrefix(trimmed, "$$")
		if len(body) >= 2 && strings.HasSuffix(body, "$$") {
			r.mathLines = []string{strings.TrimSpace(strings.TrimSuffix(body, "$$"))}
			r.flushMath()
			return
		}
		r.inMath = true
		r.mathLines = nil
		if body = strings.TrimSpace(body); body != "" {
			r.mathLines = append(r.mathLines, body)
		}
		return
	}

	if trimmed == "" {
		r.flushAll()
		return
	}

	if m := reFootnoteDef.FindStringSubmatch(line); m != nil {
		r.flushAll()
		r.footnotes = append(r.footnotes, footnote{id: html.EscapeString(m[1]), body: r.inline(strings.TrimSpace(m[2]))})
		return
	}

	switch {
	case strings.HasPrefix(line, "---"):
		r.flushAll()
		r.buf.WriteString("<hr/>")
	case strings.HasPrefix(line, "#### "):
		r.heading(4, line[5:])
	case strings.HasPrefix(line, "### "):
		r.heading(3, line[4:])
	case strings.HasPrefix(line, "## "):
		r.heading(2, line[3:])
	case strings.HasPrefix(line, "# "):
		r.heading(1, line[2:])
	case strings.HasPrefix(line, "|"):
		r.tableRow(line)
	case strings.HasPrefix(line, ": "):
		r.definition(line[2:])
	case strings.HasPrefix(line, "- "):
		if !r.inList {
			r.flushAll()
			r.buf.WriteString("<ul>")
			r.inList = true
		}
		r.buf.WriteString("<li>" + r.inline(strings.TrimSpace(line[2:])) + "</li>")
	case reOrderedList.MatchString(line):
		if !r.inOrdered {
			r.flushAll()
			r.buf.WriteString("<ol>")
			r.inOrdered = true
		}
		content := reOrderedList.ReplaceAllString(line, "")
		r.buf.WriteString("<li>" + r.inline(strings.TrimSpace(content)) + "</li>")
	case strings.HasPrefix(line, "> "):
		if !r.inQuote {
			r.flushAll()
			r.buf.WriteString("<blockquote>")
			r.inQuote = true
		}
		r.buf.WriteString(r.inline(strings.TrimSpace(line[2:])))
	default:
		if len(r.para) == 0 && !r.inDefList {
			r.flushAll()
		}
		r.para = append(r.para, trimmed)
	}
}

func (r *renderer) heading(level int, text string) {
	r.flushAll()
	tag := "h" + strconv.Itoa(level)
	r.buf.WriteString("<" + tag + ">" + r.inline(strings.TrimSpace(text)) + "</" + tag + ">")
}

// definition turns the pending one-line paragraph into a <dt> and writes the
// <dd>. Without a pending term the line is treated as paragraph text.
func (r *renderer) definition(text string) {
	if len(r.para) == 1 {
		term := r.para[0]
		r.para = nil
		if !r.inDefList {
			r.flushBlocks()
			r.buf.WriteString("<dl>")
			r.inDefList = true
		}
		r.buf.WriteString("<dt>" + r.inline(term) + "</dt>")
	}
	if !r.inDefList {
		r.para = append(r.para, ": "+text)
		return
	}
	r.buf.WriteString("<dd>" + r.inline(strings.TrimSpace(text)) + "</dd>")
}

func (r *renderer) tableRow(line string) {
	if !r.inTable {
		r.flushAll()
		r.buf.WriteString("<table><thead><tr>")
		for _, cell := range parseTableCells(line) {
			r.buf.WriteString("<th>" + r.inline(cell) + "</th>")
		}
		r.buf.WriteString("</tr></thead>")
		r.inTable = true
		return
	}
	if !r.tableBody {
		r.buf.WriteString("<tbody>")
		r.tableBody = true
	}
	if isTableSeparator(line) {
		return
	}
	r.buf.WriteString("<tr>")
	for _, cell := range parseTableCells(line) {
		r.buf.WriteString("<td>" + r.inline(cell) + "</td>")
	}
	r.buf.WriteString("</tr>")
}

func (r *renderer) flushPara() {
	if len(r.para) == 0 {
		return
	}
	lines := make([]string, len(r.para))
	for i, l := range r.para {
		lines[i] = r.inline(l)
	}
	r.buf.WriteString("<p>" + strings.Join(lines, "\n") + "</p>")
	r.para = nil
}

// flushBlocks closes every open block except a pending paragraph.
func (r *renderer) flushBlocks() {
	if r.inList {
		r.buf.WriteString("</ul>")
		r.inList = false
	}
	if r.inOrdered {
		r.buf.WriteString("</ol>")
		r.inOrdered = false
	}
	if r.inQuote {
		r.buf.WriteString("</blockquote>")
		r.inQuote = false
	}
	if r.inTable {
		if r.tableBody {
			r.buf.WriteString("</tbody>")
		}
		r.buf.WriteString("</table>")
		r.inTable = false
		r.tableBody = false
	}
	if r.inDefList {
		r.buf.WriteString("</dl>")
		r.inDefList = false
	}
}

func (r *renderer) flushAll() {
	if r.inDefList {
		r.buf.WriteString("</dl>")
		r.inDefList = false
	}
	r.flushPara()
	r.flushBlocks()
}

func (r *renderer) flushCode() {
	if !r.inCode {
		return
	}
	r.buf.WriteString("</code></pre>")
	if r.codeLang {
		r.buf.WriteString("</div>")
		r.codeLang = false
	}
	r.inCode = false
}

func (r *renderer) flushMath() {
	if !r.inMath && r.mathLines == nil {
		return
	}
	r.hasMath = true
	r.buf.WriteString("<div class=\"language-math math-display\">\n")
	r.buf.WriteString(html.EscapeString(strings.Join(r.mathLines, "\n")))
	r.buf.WriteString("\n</div>\n")
	r.inMath = false
	r.mathLines = nil
}

func (r *renderer) writeFootnotes() {
	if len(r.footnotes) == 0 {
		return
	}
	notes := make([]footnote, len(r.footnotes))
	copy(notes, r.footnotes)
	// Referenced notes in reference order, unreferenced ones after them.
	sort.SliceStable(notes, func(i, j int) bool {
		ni, iok := r.refs[notes[i].id]
		nj, jok := r.refs[notes[j].id]
		if iok != jok {
			return iok
		}
		return ni < nj
	})
	r.buf.WriteString(`<section class="footnotes"><ol>`)
	for _, n := range notes {
		id := n.id
		r.buf.WriteString(`<li id="fn-` + id + `">` + n.body)
		if _, ok := r.refs[n.id]; ok {
			r.buf.WriteString(` <a href="#fnref-` + id + `" class="footnote-backref">↩</a>`)
		}
		r.buf.WriteString("</li>")
	}
	r.buf.WriteString("</ol></section>")
}

// hold replaces fragment with a placeholder that survives later inline passes.
func (r *renderer) hold(fragment string) string {
	r.stash = append(r.stash, fragment)
	return "\x00" + strconv.Itoa(len(r.stash)-1) + "\x00"
}

func (r *renderer) release(s string) string {
	for i := len(r.stash) - 1; i >= 0; i-- {
		s = strings.Replace(s, "\x00"+strconv.Itoa(i)+"\x00", r.stash[i], 1)
	}
	return s
}

func (r *renderer) inline(s string) string {
	escaped := html.EscapeString(s)

	// Code spans first: nothing inside backticks is formatted.
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		return r.hold("<code>" + reInlineCode.FindStringSubmatch(m)[1] + "</code>")
	})
	escaped = r.inlineMath(escaped)
	escaped = reFootnoteRef.ReplaceAllStringFunc(escaped, func(m string) string {
		id := reFootnoteRef.FindStringSubmatch(m)[1]
		n, ok := r.refs[id]
		if !ok {
			n = len(r.refs) + 1
			r.refs[id] = n
		}
		return r.hold(`<sup class="footnote-ref"><a href="#fn-` + id + `" id="fnref-` + id + `">` + strconv.Itoa(n) + `</a></sup>`)
	})
	escaped = reImgStyled.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImgStyled.FindStringSubmatch(m)
		width, height := "1024", "768"
		if match[4] != "" && match[5] != "" {
			width, height = match[4], match[5]
		}
		return r.image(match[1], match[2], match[3], width, height)
	})
	escaped = reImg.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImg.FindStringSubmatch(m)
		return r.image(match[1], match[2], "", "", "")
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if match[3] == "^" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})
	// Emphasis only outside tags so underscores in href values survive.
	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
		return seg
	})
	return r.release(escaped)
}

func (r *renderer) image(alt, rawSrc, style, width, height string) string {
	src := SafeURL(rawSrc)
	if src == "" {
		return alt
	}
	r.images++
	loadAttr := `loading="lazy"`
	if r.images == 1 {
		loadAttr = `fetchpriority="high"`
	}
	img := `<img ` + loadAttr
	if width != "" && height != "" {
		img += ` width="` + width + `" height="` + height + `"`
	}
	img += ` alt="` + alt + `" src="` + src + `"`
	if style != "" {
		img += ` style="` + style + `"`
	}
	return r.hold(img + ` decoding="async"/>`)
}

// inlineMath replaces $...$ spans with math markup. An opening dollar must be
// followed by a non-space, a closing one must follow a non-space and not be
// followed by a digit, so prices like "$5 and $10" stay text. \$ is a literal
// dollar sign.
func (r *renderer) inlineMath(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == '$' {
			b.WriteString(r.hold("$"))
			i += 2
			continue
		}
		if c != '$' || i+1 >= len(s) || s[i+1] == ' ' || s[i+1] == '$' {
			b.WriteByte(c)
			i++
			continue
		}
		end := -1
		for j := i + 1; j < len(s); j++ {
			if s[j] == '$' && s[j-1] != '\\' {
				end = j
				break
			}
		}
		if end < 0 || s[end-1] == ' ' || (end+1 < len(s) && s[end+1] >= '0' && s[end+1] <= '9') {
			b.WriteByte(c)
			i++
			continue
		}
		r.hasMath = true
		b.WriteString(r.hold(`<span class="language-math math-inline">` + s[i+1:end] + `</span>`))
		i = end + 1
	}
	return b.String()
}

func parseTableCells(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isTableSeparator(line string) bool {
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "|")
	for _, cell := range strings.Split(line, "|") {
		cell = strings.TrimSpace(cell)
		cleaned := strings.ReplaceAll(strings.ReplaceAll(cell, "-", ""), ":", "")
		if cleaned != "" {
			return false
		}
	}
	return true
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
