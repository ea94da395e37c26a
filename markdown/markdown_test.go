package markdown

import (
	"strings"
	"testing"
)

func TestFormatInlineBold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineItalic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"text *italic* more", "text <em>italic</em> more"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineNested(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"__bold _italic_ text__", "<strong>bold <em>italic</em> text</strong>"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"`code`", "<code>code</code>"},
		{"use `fmt.Println` here", "use <code>fmt.Println</code> here"},
		{"`a` and `b`", "<code>a</code> and <code>b</code>"},
		{"`**not bold**`", "<code>**not bold**</code>"},
		{"`$x$`", "<code>$x$</code>"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineLinks(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"[Wikipedia](https://en.wikipedia.org/wiki/Some_Article_Title)",
			`<a href="https://en.wikipedia.org/wiki/Some_Article_Title">Wikipedia</a>`,
		},
		{
			"[Google](https://google.com)^",
			`<a href="https://google.com" target="_blank" rel="noopener noreferrer">Google</a>`,
		},
		{
			"see [the paper](/bitcoin.pdf) now",
			`see <a href="/bitcoin.pdf">the paper</a> now`,
		},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q)\n  got:  %q\n  want: %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineRejectsUnsafeLinks(t *testing.T) {
	got := FormatInline("[x](javascript:alert(1))")
	if strings.Contains(got, "javascript") {
		t.Errorf("unsafe href kept: %q", got)
	}
}

func TestFormatInlineImage(t *testing.T) {
	got := FormatInline("![block](/img/block.png)")
	want := `<img fetchpriority="high" alt="block" src="/img/block.png" decoding="async"/>`
	if got != want {
		t.Errorf("FormatInline image = %q, want %q", got, want)
	}
}

func TestFormatInlineMath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Euler: $e^{i\\pi}+1=0$", `Euler: <span class="language-math math-inline">e^{i\pi}+1=0</span>`},
		{"$a<b$", `<span class="language-math math-inline">a&lt;b</span>`},
		{"costs $5 and $10", "costs $5 and $10"},
		{`price \$5`, "price $5"},
		{"$ not math $", "$ not math $"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderHasMath(t *testing.T) {
	if Render("plain $5 text").HasMath {
		t.Error("HasMath should be false for prices")
	}
	if !Render("inline $x^2$ math").HasMath {
		t.Error("HasMath should be true for inline math")
	}
	if !Render("$$\nx\n$$").HasMath {
		t.Error("HasMath should be true for block math")
	}
}

func TestRenderMathBlock(t *testing.T) {
	want := "<div class=\"language-math math-display\">\nx^2 + y^2\n</div>\n"
	if got := Render("$$\nx^2 + y^2\n$$").HTML; got != want {
		t.Errorf("multi-line block = %q, want %q", got, want)
	}
	want = "<div class=\"language-math math-display\">\nx\n</div>\n"
	if got := Render("$$x$$").HTML; got != want {
		t.Errorf("single-line block = %q, want %q", got, want)
	}
}

func TestRenderFootnotes(t *testing.T) {
	got := Render("Text[^a].\n\n[^a]: The note.").HTML
	ref := `<p>Text<sup class="footnote-ref"><a href="#fn-a" id="fnref-a">1</a></sup>.</p>`
	if !strings.Contains(got, ref) {
		t.Errorf("missing reference %q in %q", ref, got)
	}
	note := `<section class="footnotes"><ol><li id="fn-a">The note. <a href="#fnref-a" class="footnote-backref">↩</a></li></ol></section>`
	if !strings.HasSuffix(got, note) {
		t.Errorf("missing footnote section %q in %q", note, got)
	}
}

func TestRenderFootnotesOrderedByReference(t *testing.T) {
	got := Render("One[^y] two[^x].\n\n[^x]: X.\n[^y]: Y.").HTML
	if strings.Index(got, `id="fn-y"`) > strings.Index(got, `id="fn-x"`) {
		t.Errorf("footnotes should follow reference order: %q", got)
	}
}

func TestRenderFootnotesEscapedID(t *testing.T) {
	got := Render("Second[^b] first[^a&b].\n\n[^a&b]: Amp.\n[^b]: B.").HTML
	note := `<li id="fn-a&amp;b">Amp. <a href="#fnref-a&amp;b" class="footnote-backref">↩</a></li>`
	if !strings.Contains(got, note) {
		t.Errorf("missing backref %q in %q", note, got)
	}
	if strings.Index(got, `id="fn-b"`) > strings.Index(got, `id="fn-a&amp;b"`) {
		t.Errorf("footnotes should follow reference order: %q", got)
	}
}

func TestRenderDefinitionList(t *testing.T) {
	want := "<dl><dt>Nonce</dt><dd>A number used once.</dd></dl>"
	if got := Render("Nonce\n: A number used once.").HTML; got != want {
		t.Errorf("Render deflist = %q, want %q", got, want)
	}
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got := Render("```go\nfmt.Println(\"hello\")\n```").HTML
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("code block should have language-go class: %q", got)
	}
	if !strings.Contains(got, `<span class="code-lang code-lang-go">go</span>`) {
		t.Errorf("code block should have language badge: %q", got)
	}
	if !strings.HasSuffix(got, "</code></pre></div>") {
		t.Errorf("wrapper div should be closed: %q", got)
	}
}

func TestRenderCodeBlockKeepsDollars(t *testing.T) {
	res := Render("```\necho $HOME $PATH\n```")
	if res.HasMath {
		t.Error("code block content must not count as math")
	}
	if !strings.Contains(res.HTML, "echo $HOME $PATH") {
		t.Errorf("code content changed: %q", res.HTML)
	}
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Heading 1", "<h1>Heading 1</h1>"},
		{"## Heading 2", "<h2>Heading 2</h2>"},
		{"### Heading 3", "<h3>Heading 3</h3>"},
		{"#### Heading 4", "<h4>Heading 4</h4>"},
	}
	for _, tt := range tests {
		if got := Render(tt.input).HTML; got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderLists(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"- item 1\n- item 2", "<ul><li>item 1</li><li>item 2</li></ul>"},
		{"1. first\n2. second", "<ol><li>first</li><li>second</li></ol>"},
		{"1. **bold** item\n2. *italic* item", "<ol><li><strong>bold</strong> item</li><li><em>italic</em> item</li></ol>"},
	}
	for _, tt := range tests {
		if got := Render(tt.input).HTML; got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderParagraphs(t *testing.T) {
	want := "<p>line one\nline two</p><p>second</p>"
	if got := Render("line one\nline two\n\nsecond").HTML; got != want {
		t.Errorf("Render paragraphs = %q, want %q", got, want)
	}
}

func TestRenderTable(t *testing.T) {
	want := "<table><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>"
	if got := Render("| a | b |\n|---|---|\n| 1 | 2 |").HTML; got != want {
		t.Errorf("Render table = %q, want %q", got, want)
	}
}
