package models

import (
	"errors"
	"strings"
)

// Category is one of a closed set of recipe categories.
type Category string

const (
	CategoryMainCourse Category = "Main Course"
	CategoryDrink      Category = "Drink"
	CategorySnack      Category = "Snack"
	CategoryDessert    Category = "Dessert"
	CategoryOther      Category = "Other"
)

// CategoryAll is the search pseudo-category that disables category filtering.
const CategoryAll = "All"

var ErrUnknownCategory = errors.New("unknown category")

var categories = []Category{
	CategoryMainCourse,
	CategoryDrink,
	CategorySnack,
	CategoryDessert,
	CategoryOther,
}

// Categories lists every valid category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, v := range categories {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", ErrUnknownCategory
}
