package mdblog

import "embed"

// EmbeddedAssets contains the default stylesheet served at /public/styles.css
// and copied into static builds.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
