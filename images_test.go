package sni

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessImageKeepsSmallImages(t *testing.T) {
	var src bytes.Buffer
	require.NoError(t, png.Encode(&src, image.NewRGBA(image.Rect(0, 0, 640, 480))))

	data, err := processImage(&src)
	require.NoError(t, err)
	conf, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 640, conf.Width)
	assert.Equal(t, 480, conf.Height)
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	_, err := processImage(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestHeaderImagePassesThroughURLs(t *testing.T) {
	for _, name := range []string{"", "https://cdn.example.com/a.png", "/public/images/a.jpg"} {
		img, err := resolveHeaderImage(name, "missing", "missing")
		require.NoError(t, err)
		assert.Equal(t, name, img.Public)
		assert.NoError(t, img.convert())
	}
}

func TestHeaderImageMissingSource(t *testing.T) {
	_, err := resolveHeaderImage("nope.png", t.TempDir(), t.TempDir())
	assert.Error(t, err)
}

func TestHeaderImageConvert(t *testing.T) {
	srcDir, staticDir := t.TempDir(), t.TempDir()
	writePNG(t, filepath.Join(srcDir, "charts", "Fee Chart.png"), 1600, 800)

	img, err := resolveHeaderImage("charts/Fee Chart.png", srcDir, staticDir)
	require.NoError(t, err)
	assert.Equal(t, "/public/images/charts-fee-chart.jpg", img.Public)
	dst := filepath.Join(staticDir, "images", "charts-fee-chart.jpg")
	_, err = os.Stat(dst)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, img.convert())
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	conf, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1200, conf.Width)
}

func TestHeaderImageStaysInSourceDir(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "secret.png"), 10, 10)
	srcDir := filepath.Join(root, "images")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))

	_, err := resolveHeaderImage("../secret.png", srcDir, t.TempDir())
	assert.Error(t, err)
}
