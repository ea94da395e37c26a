package sni

import "embed"

// EmbeddedAssets contains the static assets shipped with sni and served
// under /public: site.css and the math.js loader.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
