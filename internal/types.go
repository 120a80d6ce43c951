package internal

import (
	"time"

	"github.com/samber/lo"
)

type Category string

const (
	CategoryLink    Category = "link"
	CategoryProject Category = "project"
)

var Categories = []Category{CategoryLink, CategoryProject}

func (c Category) Valid() bool {
	return lo.Contains(Categories, c)
}

type Link struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	IsActive    bool      `json:"isActive"`
	Order       int       `json:"order"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LinkInput holds the fields a caller supplies when creating a link.
// Order, ID and timestamps are assigned by the repository.
type LinkInput struct {
	Title       string
	URL         string
	Description string
	Icon        string
	IsActive    bool
	Category    Category
}

// LinkPatch is a partial update. Nil fields are left untouched.
type LinkPatch struct {
	Title       *string   `json:"title"`
	URL         *string   `json:"url"`
	Description *string   `json:"description"`
	Icon        *string   `json:"icon"`
	IsActive    *bool     `json:"isActive"`
	Order       *int      `json:"order"`
	Category    *Category `json:"category"`
}

type CustomIcon struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SVGContent string    `json:"svgContent"`
	DataURL    string    `json:"dataUrl"`
	CreatedAt  time.Time `json:"createdAt"`
}
