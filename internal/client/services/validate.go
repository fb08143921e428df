package services

import (
	"strings"

	"github.com/dmitrijs2005/recipebox/internal/models"
)

// ValidateDraft checks the draft rules in order and returns the first one
// broken as a *ValidationError.
func ValidateDraft(d models.RecipeDraft) error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Err: ErrTitleRequired}
	}
	if !allFilled(d.Ingredients) {
		return &ValidationError{Field: "ingredients", Err: ErrIngredientsRequired}
	}
	if !allFilled(d.Steps) {
		return &ValidationError{Field: "steps", Err: ErrStepsRequired}
	}
	if d.CookingTime <= 0 {
		return &ValidationError{Field: "cooking_time", Err: ErrCookingTimeInvalid}
	}
	if !d.Category.Valid() {
		return &ValidationError{Field: "category", Err: ErrCategoryInvalid}
	}
	return nil
}

func validateRecipe(r models.Recipe) error {
	return ValidateDraft(models.RecipeDraft{
		Title:       r.Title,
		Category:    r.Category,
		CookingTime: r.CookingTime,
		Ingredients: r.Ingredients,
		Steps:       r.Steps,
	})
}

func allFilled(items []string) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			return false
		}
	}
	return true
}

// CleanList trims every entry and drops the blank ones.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// trimList trims every entry but keeps blank ones, so validation still
// sees them.
func trimList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = strings.TrimSpace(it)
	}
	return out
}

func normalizeDraft(d models.RecipeDraft) models.RecipeDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	d.Ingredients = trimList(d.Ingredients)
	d.Steps = trimList(d.Steps)
	return d
}
