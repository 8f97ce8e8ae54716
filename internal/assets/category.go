// Package assets finds the media assets an edit document references and
// checks them against an asset catalog.
package assets

import (
	"fmt"
	"strings"
)

// Category is an asset kind.
type Category string

const (
	Video Category = "video"
	Image Category = "image"
	Audio Category = "audio"
	GIF   Category = "gif"
)

// categoryTable fixes the singular and plural spelling of each category.
var categoryTable = []struct {
	category Category
	plural   string
}{
	{Video, "videos"},
	{Image, "images"},
	{Audio, "audios"},
	{GIF, "gifs"},
}

// Categories lists every category in table order.
func Categories() []Category {
	out := make([]Category, len(categoryTable))
	for i, row := range categoryTable {
		out[i] = row.category
	}
	return out
}

// ParseCategory accepts the singular or plural spelling.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, row := range categoryTable {
		if s == string(row.category) || s == row.plural {
			return row.category, true
		}
	}
	return "", false
}

// Plural returns the asset-table key for the category.
func (c Category) Plural() string {
	for _, row := range categoryTable {
		if row.category == c {
			return row.plural
		}
	}
	return string(c) + "s"
}

// Timed reports whether assets of this category have a duration.
func (c Category) Timed() bool {
	return c == Video || c == Audio || c == GIF
}

// Ref identifies one asset.
type Ref struct {
	Category Category `json:"category" yaml:"category"`
	Name     string   `json:"name" yaml:"name"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Category, r.Name)
}
