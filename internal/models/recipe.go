package models

import (
	"io"
	"slices"
	"time"
)

// DefaultImageURL is used when a recipe has no uploaded image.
const DefaultImageURL = "/placeholder.svg"

// Recipe is a persisted recipe as seen by the catalog cache.
type Recipe struct {
	ID          string
	Title       string
	Category    Category
	CookingTime int // minutes
	ImageURL    string
	Ingredients []string
	Steps       []string
	CreatorID   string
	CreatorName string
	Likes       int
	CreatedAt   time.Time
}

// Clone returns a deep copy so callers cannot mutate cached slices.
func (r Recipe) Clone() Recipe {
	r.Ingredients = slices.Clone(r.Ingredients)
	r.Steps = slices.Clone(r.Steps)
	return r
}

// RecipeDraft is the add-recipe form payload.
type RecipeDraft struct {
	Title       string
	Category    Category
	CookingTime int
	ImageURL    string
	Ingredients []string
	Steps       []string
}

// NewRecipe is what gets inserted remotely once a draft passes validation.
type NewRecipe struct {
	Title       string
	Category    Category
	CookingTime int
	ImageURL    string
	Ingredients []string
	Steps       []string
	CreatorID   string
	CreatorName string
}

// RecipePatch carries the fields an edit changes. Nil means unchanged.
type RecipePatch struct {
	Title       *string
	Category    *Category
	CookingTime *int
	ImageURL    *string
	Ingredients []string
	Steps       []string
}

// Empty reports whether the patch changes nothing.
func (p RecipePatch) Empty() bool {
	return p.Title == nil && p.Category == nil && p.CookingTime == nil &&
		p.ImageURL == nil && p.Ingredients == nil && p.Steps == nil
}

// Apply returns r with the patch merged in.
func (p RecipePatch) Apply(r Recipe) Recipe {
	out := r.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.CookingTime != nil {
		out.CookingTime = *p.CookingTime
	}
	if p.ImageURL != nil {
		out.ImageURL = *p.ImageURL
	}
	if p.Ingredients != nil {
		out.Ingredients = slices.Clone(p.Ingredients)
	}
	if p.Steps != nil {
		out.Steps = slices.Clone(p.Steps)
	}
	return out
}

// ImageUpload is an image picked in the add form, uploaded before the insert.
type ImageUpload struct {
	Name        string
	ContentType string
	Body        io.Reader
}
