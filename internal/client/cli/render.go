package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/recipebox/internal/models"
)

func renderToast(t models.Toast) string {
	if t.IsError {
		return "[error] " + t.Text
	}
	return "[ok] " + t.Text
}

// renderList prints recipes as an aligned table. marked reports whether a
// recipe is bookmarked; it may be nil.
func renderList(w io.Writer, recipes []models.Recipe, marked func(id string) bool) {
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tTITLE\tCATEGORY\tTIME\tLIKES\tBY")
	for _, r := range recipes {
		star := ""
		if marked != nil && marked(r.ID) {
			star = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d min\t%d\t%s\n",
			star, r.ID, r.Title, r.Category, r.CookingTime, r.Likes, r.CreatorName)
	}
	_ = tw.Flush()
}

func renderRecipe(w io.Writer, r models.Recipe, bookmarked bool) {
	title := r.Title
	if bookmarked {
		title += " *"
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "ID:       %s\n", r.ID)
	fmt.Fprintf(w, "Category: %s\n", r.Category)
	fmt.Fprintf(w, "Time:     %d min\n", r.CookingTime)
	fmt.Fprintf(w, "Likes:    %d\n", r.Likes)
	fmt.Fprintf(w, "By:       %s\n", r.CreatorName)
	fmt.Fprintf(w, "Image:    %s\n", r.ImageURL)
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Added:    %s\n", r.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Fprintln(w, "\nIngredients:")
	for _, s := range r.Ingredients {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	fmt.Fprintln(w, "\nSteps:")
	for i, s := range r.Steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
}

func categoryNames() string {
	cats := models.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
