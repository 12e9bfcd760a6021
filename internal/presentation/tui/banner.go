package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	` _                            `,
	`| |__   ___  _ __   ___ _   _ `,
	`| '_ \ / _ \| '_ \ / _ \ | | |`,
	`| | | | (_) | | | |  __/ |_| |`,
	`|_| |_|\___/|_| |_|\___|\__, |`,
	`                        |___/ `,
}

// amber to brown
var bannerColors = []string{"#fde68a", "#fcd34d", "#fbbf24", "#f59e0b", "#d97706", "#b45309"}

// PrintBanner writes the honey banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
