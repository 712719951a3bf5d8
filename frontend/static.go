// Package static provides the embedded dashboard page
package static

import "embed"

// FS contains the dashboard page and its scripts
//
//go:embed all:build/*
var FS embed.FS
