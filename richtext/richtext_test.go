package richtext

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAnchorsHeadings(t *testing.T) {
	out, err := Process(`<h2>Block Fees</h2><h2>Block Fees</h2><h3 id="keep">Kept</h3>`, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `<h2 id="block-fees">Block Fees</h2>`)
	assert.Contains(t, out, `<h2 id="block-fees-2">Block Fees</h2>`)
	assert.Contains(t, out, `<h3 id="keep">Kept</h3>`)
}

func TestProcessHeadingIDAvoidsExistingIDs(t *testing.T) {
	out, err := Process(`<p id="intro">x</p><h2>Intro</h2>`, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `<h2 id="intro-2">Intro</h2>`)
}

func TestProcessExternalLinks(t *testing.T) {
	out, err := Process(`<p><a href="https://bitcoin.org/bitcoin.pdf">paper</a> <a href="/en/mempool">index</a></p>`, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `<a href="https://bitcoin.org/bitcoin.pdf" target="_blank" rel="noopener noreferrer">paper</a>`)
	assert.Contains(t, out, `<a href="/en/mempool">index</a>`)
}

func TestProcessLazyImages(t *testing.T) {
	out, err := Process(`<img src="/a.png" alt="a"/><img src="/b.png" loading="eager"/>`, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `<img src="/a.png" alt="a" loading="lazy"/>`)
	assert.Contains(t, out, `<img src="/b.png" loading="eager"/>`)
}

func TestProcessMathEnabled(t *testing.T) {
	content := `<p>Let <span class='language-math math-inline'>x^2</span>.</p>` +
		"<div class=\"language-math math-display\">\ny = mx + b\n</div>"
	out, err := Process(content, Options{Math: true})
	require.NoError(t, err)
	assert.Contains(t, out, `data-math="inline"`)
	assert.Contains(t, out, `data-math="display"`)
	assert.Contains(t, out, "katex.min.js")
	assert.Contains(t, out, "katex.min.css")
	assert.Contains(t, out, `src="/public/math.js"`)
}

func TestProcessMathDisabled(t *testing.T) {
	content := `<p>Let <span class="language-math math-inline">x^2</span>.</p>`
	out, err := Process(content, Options{Math: false})
	require.NoError(t, err)
	assert.NotContains(t, out, "katex")
	assert.NotContains(t, out, "data-math")
	assert.Contains(t, out, `<span class="language-math math-inline">x^2</span>`)
}

func TestRenderComponent(t *testing.T) {
	var buf bytes.Buffer
	err := Render("<p>hello</p>", Options{Math: true}).Render(context.Background(), &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "<p>hello</p>"))
	assert.Contains(t, buf.String(), "/public/math.js")
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "block-fees", slug("Block Fees!"))
	assert.Equal(t, "comisiones-de-bloque", slug("  Comisiones de bloque "))
	assert.Equal(t, "über-geld", slug("Über Geld"))
	assert.Equal(t, "", slug("!!!"))
}
