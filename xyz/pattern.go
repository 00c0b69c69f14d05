// Package xyz provides templates for XYZ tile addressing, where tiles are
// identified by URLs or file paths like "https://host/{z}/{x}/{y}.png",
// and a reader for tiles stored as individual files in that layout.
package xyz

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tilestream/tile"
)

var ErrInvalidPattern = errors.New("tilestream: invalid tile pattern")

// Template formats tile addresses into request keys and parses them back.
type Template struct {
	pattern string
	regexp  *regexp.Regexp
}

// NewTemplate validates the pattern, which must contain each of the {z}, {x} and {y} slots.
func NewTemplate(pattern string) (Template, error) {
	if err := validatePattern(pattern); err != nil {
		return Template{}, err
	}

	regexPattern := regexp.QuoteMeta(pattern)
	regexPattern = strings.ReplaceAll(regexPattern, regexp.QuoteMeta("{x}"), "(?P<x>\\d+)")
	regexPattern = strings.ReplaceAll(regexPattern, regexp.QuoteMeta("{y}"), "(?P<y>\\d+)")
	regexPattern = strings.ReplaceAll(regexPattern, regexp.QuoteMeta("{z}"), "(?P<z>\\d+)")
	keyRegexp, err := regexp.Compile("^" + regexPattern + "$")
	if err != nil {
		return Template{}, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	return Template{pattern: pattern, regexp: keyRegexp}, nil
}

// MustTemplate is like NewTemplate but panics on an invalid pattern.
func MustTemplate(pattern string) Template {
	t, err := NewTemplate(pattern)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Template) String() string {
	return t.pattern
}

// Format substitutes the tile coordinates into the pattern.
func (t Template) Format(tileID tile.ID) string {
	return formatPattern(t.pattern, tileID)
}

// Parse extracts tile coordinates from a key produced by Format.
func (t Template) Parse(key string) (tile.ID, bool) {
	if t.regexp == nil {
		return tile.ID{}, false
	}
	matches := t.regexp.FindStringSubmatch(key)
	if matches == nil {
		return tile.ID{}, false
	}

	var coords [3]uint32
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.ParseUint(matches[t.regexp.SubexpIndex(name)], 10, 32)
		if err != nil {
			return tile.ID{}, false
		}
		coords[i] = uint32(v)
	}
	return tile.ID{X: coords[0], Y: coords[1], Z: coords[2]}, true
}

func validatePattern(pattern string) error {
	for _, p := range []string{"{x}", "{y}", "{z}"} {
		switch strings.Count(pattern, p) {
		case 0:
			return fmt.Errorf("%w: placeholder %v not found", ErrInvalidPattern, p)
		case 1:
		default:
			return fmt.Errorf("%w: placeholder %v repeated", ErrInvalidPattern, p)
		}
	}
	return nil
}

func formatPattern(pattern string, tileID tile.ID) string {
	result := pattern
	result = strings.ReplaceAll(result, "{x}", strconv.FormatUint(uint64(tileID.X), 10))
	result = strings.ReplaceAll(result, "{y}", strconv.FormatUint(uint64(tileID.Y), 10))
	result = strings.ReplaceAll(result, "{z}", strconv.FormatUint(uint64(tileID.Z), 10))
	return result
}
