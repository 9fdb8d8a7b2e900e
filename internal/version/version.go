// Package version carries the build fingerprints of the flowtrace CLI.
package version

import (
	"strings"

	"github.com/fatih/color"
)

// Overridden at build time via -ldflags, e.g.
//
//	go build -ldflags "-X flowtrace/internal/version.Number=0.3.0 \
//	  -X flowtrace/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// Number is the semantic version of the toolkit.
	Number = "0.2.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Один цвет на сегмент версии: major/minor/patch.
var segmentColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Colored renders Number with each dotted segment in its own color.
// When color output is disabled the result equals Number.
func Colored() string {
	base, suffix, _ := strings.Cut(Number, "-")
	parts := strings.Split(base, ".")
	for i, part := range parts {
		parts[i] = segmentColors[i%len(segmentColors)].Sprint(part)
	}
	out := strings.Join(parts, ".")
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
