package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/recipebox/internal/models"
)

// openFile is a test seam for os.Open.
var openFile = func(name string) (io.ReadCloser, error) { return os.Open(name) }

var (
	errNotOwner  = errors.New("only the creator can change this recipe")
	errNoSession = errors.New("not signed in")
)

func (a *App) List(ctx context.Context) error {
	renderList(a.out, a.catalog.Recipes(), a.catalog.IsBookmarked)
	return nil
}

// Search asks for a title fragment and a category; an empty category or
// "All" searches every category.
func (a *App) Search(ctx context.Context) error {
	query, err := getSimpleText(a.reader, "Title contains (empty for any)", a.out)
	if err != nil {
		return err
	}

	prompt := "Category (All"
	for _, c := range a.catalog.Categories() {
		prompt += ", " + string(c)
	}
	prompt += ")"
	category, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}

	renderList(a.out, a.catalog.Search(query, category), a.catalog.IsBookmarked)
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	r, ok := a.catalog.Recipe(id)
	if !ok {
		fmt.Fprintf(a.out, "Recipe %s not found.\n", id)
		return nil
	}
	renderRecipe(a.out, r, a.catalog.IsBookmarked(id))
	return nil
}

// Add collects a draft and an optional image. An image value starting with
// http:// or https:// is used as the image URL; anything else is read as a
// local file and uploaded.
func (a *App) Add(ctx context.Context) error {
	var d models.RecipeDraft

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	d.Title = title

	cat, err := getSimpleText(a.reader, "Category ("+categoryNames()+")", a.out)
	if err != nil {
		return err
	}
	d.Category = parseCategory(cat)

	mins, err := getSimpleText(a.reader, "Cooking time, minutes", a.out)
	if err != nil {
		return err
	}
	d.CookingTime = parseMinutes(mins)

	if d.Ingredients, err = getList(a.reader, "Ingredients", a.out); err != nil {
		return err
	}
	if d.Steps, err = getList(a.reader, "Steps", a.out); err != nil {
		return err
	}

	img, err := getSimpleText(a.reader, "Image file or URL (empty for none)", a.out)
	if err != nil {
		return err
	}

	var upload *models.ImageUpload
	switch {
	case img == "":
	case strings.HasPrefix(img, "http://"), strings.HasPrefix(img, "https://"):
		d.ImageURL = img
	default:
		f, err := openFile(img)
		if err != nil {
			fmt.Fprintf(a.out, "Cannot open image: %v\n", err)
			return err
		}
		defer f.Close()
		upload = &models.ImageUpload{
			Name:        filepath.Base(img),
			ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(img))),
			Body:        f,
		}
	}

	r, err := a.catalog.AddRecipe(ctx, d, upload)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s.\n", r.ID)
	return nil
}

// Edit prompts for every field with the current value shown. An empty
// answer keeps the field; list fields are only replaced on request.
func (a *App) Edit(ctx context.Context, id string) error {
	cur, err := a.owned(id)
	if err != nil {
		return err
	}

	var p models.RecipePatch

	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", cur.Title), a.out)
	if err != nil {
		return err
	}
	if title != "" {
		p.Title = &title
	}

	cat, err := getSimpleText(a.reader, fmt.Sprintf("Category [%s]", cur.Category), a.out)
	if err != nil {
		return err
	}
	if cat != "" {
		c := parseCategory(cat)
		p.Category = &c
	}

	mins, err := getSimpleText(a.reader, fmt.Sprintf("Cooking time, minutes [%d]", cur.CookingTime), a.out)
	if err != nil {
		return err
	}
	if mins != "" {
		n := parseMinutes(mins)
		p.CookingTime = &n
	}

	img, err := getSimpleText(a.reader, fmt.Sprintf("Image URL [%s]", cur.ImageURL), a.out)
	if err != nil {
		return err
	}
	if img != "" {
		p.ImageURL = &img
	}

	if p.Ingredients, err = a.maybeList("ingredients", "Ingredients"); err != nil {
		return err
	}
	if p.Steps, err = a.maybeList("steps", "Steps"); err != nil {
		return err
	}

	if p.Empty() {
		fmt.Fprintln(a.out, "Nothing changed.")
		return nil
	}
	_, err = a.catalog.UpdateRecipe(ctx, id, p)
	return err
}

func (a *App) Delete(ctx context.Context, id string) error {
	r, err := a.owned(id)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Delete %q?", r.Title)) {
		return nil
	}
	return a.catalog.DeleteRecipe(ctx, id)
}

func (a *App) Bookmark(ctx context.Context, id string) error {
	_, err := a.catalog.ToggleBookmark(ctx, id)
	return err
}

func (a *App) Bookmarks(ctx context.Context) error {
	renderList(a.out, a.catalog.BookmarkedRecipes(), nil)
	return nil
}

func (a *App) Mine(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return errNoSession
	}
	renderList(a.out, a.catalog.RecipesByCreator(u.ID), a.catalog.IsBookmarked)
	return nil
}

// Refresh re-reads the feed and the bookmark set.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.catalog.FetchRecipes(ctx); err != nil {
		fmt.Fprintln(a.out, "Could not refresh recipes.")
		return err
	}
	if err := a.catalog.LoadBookmarks(ctx); err != nil {
		a.log.Warn(ctx, "bookmarks not reloaded", "error", err)
	}
	fmt.Fprintf(a.out, "%d recipes loaded.\n", len(a.catalog.Recipes()))
	return nil
}

// owned returns the cached recipe when the current user created it.
func (a *App) owned(id string) (models.Recipe, error) {
	u := a.session.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return models.Recipe{}, errNoSession
	}
	r, ok := a.catalog.Recipe(id)
	if !ok {
		fmt.Fprintf(a.out, "Recipe %s not found.\n", id)
		return models.Recipe{}, fmt.Errorf("recipe %s not found", id)
	}
	if r.CreatorID != u.ID {
		fmt.Fprintln(a.out, "Only the creator can change this recipe.")
		return models.Recipe{}, errNotOwner
	}
	return r, nil
}

// maybeList asks whether to replace a list field and reads the new items.
// A nil result leaves the field unchanged.
func (a *App) maybeList(name, prompt string) ([]string, error) {
	if !a.confirm(fmt.Sprintf("Replace %s?", name)) {
		return nil, nil
	}
	items, err := getList(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

func (a *App) confirm(question string) bool {
	ans, err := getSimpleText(a.reader, question+" [y/N]", a.out)
	if err != nil {
		return false
	}
	ans = strings.ToLower(ans)
	return ans == "y" || ans == "yes"
}

// parseCategory falls back to the raw text so that validation reports it.
func parseCategory(s string) models.Category {
	if c, err := models.ParseCategory(s); err == nil {
		return c
	}
	return models.Category(strings.TrimSpace(s))
}

// parseMinutes yields 0 for anything that is not a number, which validation
// rejects.
func parseMinutes(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
