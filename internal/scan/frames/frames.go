// Package frames cuts product stills out of a scan video.
package frames

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fogfish/faults"
)

const (
	errExtract = faults.Type("frames: extract")
	errDecode  = faults.Type("frames: decode")
	errEncode  = faults.Type("frames: encode")
	errWrite   = faults.Type("frames: write")
)

const (
	// DefaultWidth is the width stills are resized to.
	DefaultWidth = 800
	maxNameRunes = 15
	jpegQuality  = 85
)

// SanitizeName keeps letters and digits of a title, truncated to 15 runes.
func SanitizeName(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range title {
		if n == maxNameRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}

// FrameName is the file name of the still cut at timestamp for title.
// A non-empty prefix keeps stills of different scans apart; only letters,
// digits and '-' of it are kept.
func FrameName(prefix, title string, timestamp float64) string {
	name := fmt.Sprintf("%s_%d.jpg", SanitizeName(title), int(timestamp))
	prefix = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return -1
	}, prefix)
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}
