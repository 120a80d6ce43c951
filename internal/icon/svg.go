// Package icon validates and normalizes the SVG icons admins upload for
// their links.
package icon

import (
	"encoding/base64"
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abdusco/linkhub/internal"
)

const (
	MaxSize       = 100 * 1024
	dataURLPrefix = "data:image/svg+xml;base64,"
)

var (
	ErrNotSVG     = errors.New("please select a valid SVG file")
	ErrTooLarge   = errors.New("SVG file size must be less than 100KB")
	ErrInvalidSVG = errors.New("invalid SVG file format")
)

var (
	svgElement      = regexp.MustCompile(`(?is)<svg[^>]*>.*</svg>`)
	comments        = regexp.MustCompile(`(?s)<!--.*?-->`)
	scripts         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	eventHandlers   = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	scriptLinks     = regexp.MustCompile(`(?i)\s+(?:xlink:)?href\s*=\s*("\s*javascript:[^"]*"|'\s*javascript:[^']*'|javascript:[^\s>]*)`)
	whitespace      = regexp.MustCompile(`\s+`)
	betweenTags     = regexp.MustCompile(`>\s+<`)
	widthAttribute  = regexp.MustCompile(`(\s)width="[^"]*"`)
	heightAttribute = regexp.MustCompile(`(\s)height="[^"]*"`)
)

func Validate(svg string) bool {
	return svgElement.MatchString(strings.TrimSpace(svg))
}

// Optimize strips comments, scripts, inline event handlers and javascript:
// links, collapses whitespace and sizes the icon to 24x24.
func Optimize(svg string) string {
	svg = comments.ReplaceAllString(svg, "")
	svg = scripts.ReplaceAllString(svg, "")
	svg = eventHandlers.ReplaceAllString(svg, "")
	svg = scriptLinks.ReplaceAllString(svg, "")
	svg = whitespace.ReplaceAllString(svg, " ")
	svg = betweenTags.ReplaceAllString(svg, "><")
	svg = widthAttribute.ReplaceAllString(svg, `${1}width="24"`)
	svg = heightAttribute.ReplaceAllString(svg, `${1}height="24"`)
	return strings.TrimSpace(svg)
}

func DataURL(svg string) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString([]byte(svg))
}

// Sanitize normalizes SVG data URLs and returns any other icon value
// (emoji, plain URL) unchanged.
func Sanitize(value string) (string, error) {
	if !strings.HasPrefix(value, dataURLPrefix) {
		return value, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, dataURLPrefix))
	if err != nil {
		return "", ErrInvalidSVG
	}
	if len(raw) > MaxSize {
		return "", ErrTooLarge
	}
	if !Validate(string(raw)) {
		return "", ErrInvalidSVG
	}
	return DataURL(Optimize(string(raw))), nil
}

// FromUpload turns an uploaded file into a custom icon.
func FromUpload(name, contentType string, body []byte) (*internal.CustomIcon, error) {
	if !strings.Contains(contentType, "svg") && !strings.EqualFold(filepath.Ext(name), ".svg") {
		return nil, ErrNotSVG
	}
	if len(body) > MaxSize {
		return nil, ErrTooLarge
	}

	content := string(body)
	if !Validate(content) {
		return nil, ErrInvalidSVG
	}

	optimized := Optimize(content)
	now := time.Now().UTC()
	return &internal.CustomIcon{
		ID:         strconv.FormatInt(now.UnixMilli(), 10),
		Name:       strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
		SVGContent: optimized,
		DataURL:    DataURL(optimized),
		CreatedAt:  now,
	}, nil
}
