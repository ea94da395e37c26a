package sni

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	imagesSubdir  = "images"
)

// processImage decodes an image from src, scales it down to maxImageWidth
// when wider, and encodes it as JPEG on a white background.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		h = h * maxImageWidth / w
		w = maxImageWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// slugifyFilename converts a relative image name (without extension) to a
// URL-safe slug.
func slugifyFilename(name string) string {
	ext := path.Ext(name)
	return Slugify(strings.TrimSuffix(name, ext))
}

// headerImage is a post header image resolved against the content tree.
// Public is the path the image is served at. src and dst are empty when the
// image is a URL or an absolute path that needs no conversion.
type headerImage struct {
	Public string
	src    string
	dst    string
}

// resolveHeaderImage maps the image name, relative to srcDir, to its output
// in staticDir/images and checks that the source exists. Nothing is written.
func resolveHeaderImage(name, srcDir, staticDir string) (headerImage, error) {
	switch {
	case name == "":
		return headerImage{}, nil
	case strings.HasPrefix(name, "http://"), strings.HasPrefix(name, "https://"), strings.HasPrefix(name, "/"):
		return headerImage{Public: name}, nil
	}

	slug := slugifyFilename(name)
	if slug == "" {
		return headerImage{}, fmt.Errorf("image %q: empty name", name)
	}
	filename := slug + ".jpg"
	img := headerImage{
		Public: "/public/" + imagesSubdir + "/" + filename,
		src:    filepath.Join(srcDir, filepath.FromSlash(path.Clean("/"+name))),
		dst:    filepath.Join(staticDir, imagesSubdir, filename),
	}
	if _, err := os.Stat(img.src); err != nil {
		return headerImage{}, fmt.Errorf("image %q: %w", name, err)
	}
	return img, nil
}

// convert writes the resized JPEG. An output newer than its source is reused.
func (h headerImage) convert() error {
	if h.src == "" {
		return nil
	}
	srcInfo, err := os.Stat(h.src)
	if err != nil {
		return fmt.Errorf("image %s: %w", h.src, err)
	}
	if dstInfo, err := os.Stat(h.dst); err == nil && !dstInfo.ModTime().Before(srcInfo.ModTime()) {
		return nil
	}

	f, err := os.Open(h.src)
	if err != nil {
		return fmt.Errorf("image %s: %w", h.src, err)
	}
	defer f.Close()

	data, err := processImage(f)
	if err != nil {
		return fmt.Errorf("image %s: %w", h.src, err)
	}
	if err := os.MkdirAll(filepath.Dir(h.dst), 0o755); err != nil {
		return fmt.Errorf("create images dir: %w", err)
	}
	if err := os.WriteFile(h.dst, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}
