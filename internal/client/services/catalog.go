package services

import (
	"context"
	"errors"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/backend"
	"github.com/dmitrijs2005/recipebox/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/models"
	"github.com/google/uuid"
)

// Identity supplies the current user. *SessionStore implements it.
type Identity interface {
	User() *models.User
}

// CatalogDeps wires a CatalogStore. Recipes, Profiles, Bookmarks, Storage
// and Local are optional: without Recipes the catalog is purely local.
type CatalogDeps struct {
	Recipes   backend.Recipes
	Profiles  backend.Profiles
	Bookmarks backend.BookmarkWriter
	Storage   backend.Storage
	Local     metadata.Repository
	Identity  Identity
	Notifier  Notifier
	Logger    logging.Logger

	// Bucket receives uploaded images.
	Bucket string
	// Placeholder is the image URL for recipes without one.
	Placeholder string
	Now         func() time.Time
}

// CatalogStore caches the recipe feed and the user's bookmark set.
type CatalogStore struct {
	d   CatalogDeps
	log logging.Logger

	mu        sync.RWMutex
	recipes   []models.Recipe
	bookmarks []string
}

func NewCatalogStore(d CatalogDeps) *CatalogStore {
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Placeholder == "" {
		d.Placeholder = models.DefaultImageURL
	}
	if d.Bucket == "" {
		d.Bucket = "recipe-images"
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &CatalogStore{d: d, log: d.Logger.With("component", "catalog")}
}

// Seed replaces the cache without touching the platform.
func (c *CatalogStore) Seed(recipes []models.Recipe) {
	out := make([]models.Recipe, len(recipes))
	for i, r := range recipes {
		out[i] = r.Clone()
	}
	c.mu.Lock()
	c.recipes = out
	c.mu.Unlock()
}

// FetchRecipes replaces the cache with the platform's feed. Failures leave
// the cache as it was and are only logged.
func (c *CatalogStore) FetchRecipes(ctx context.Context) error {
	if c.d.Recipes == nil {
		return nil
	}
	list, err := c.d.Recipes.List(ctx)
	if err != nil {
		rerr := &RemoteReadError{Op: "fetch recipes", Err: err}
		c.log.Error(ctx, "fetch recipes failed", "error", err)
		return rerr
	}

	c.mu.Lock()
	c.recipes = list
	c.mu.Unlock()
	c.log.Debug(ctx, "recipes fetched", "count", len(list))
	return nil
}

// AddRecipe validates the draft and creates the recipe. With a platform the
// optional image is uploaded first, the row inserted and the feed re-fetched;
// without one a local entry is prepended to the cache.
func (c *CatalogStore) AddRecipe(ctx context.Context, draft models.RecipeDraft, image *models.ImageUpload) (models.Recipe, error) {
	draft = normalizeDraft(draft)
	if err := ValidateDraft(draft); err != nil {
		return models.Recipe{}, c.fail(err)
	}
	draft.Ingredients = CleanList(draft.Ingredients)
	draft.Steps = CleanList(draft.Steps)
	user := c.d.Identity.User()
	if user == nil {
		return models.Recipe{}, c.fail(ErrNotAuthenticated)
	}

	imageURL := draft.ImageURL
	if imageURL == "" {
		imageURL = c.d.Placeholder
	}

	if c.d.Recipes == nil {
		r := models.Recipe{
			ID:          uuid.NewString(),
			Title:       draft.Title,
			Category:    draft.Category,
			CookingTime: draft.CookingTime,
			ImageURL:    imageURL,
			Ingredients: draft.Ingredients,
			Steps:       draft.Steps,
			CreatorID:   user.ID,
			CreatorName: user.DisplayName(),
			CreatedAt:   c.d.Now(),
		}
		c.mu.Lock()
		c.recipes = append([]models.Recipe{r}, c.recipes...)
		c.mu.Unlock()
		c.d.Notifier.Success(MsgRecipeAdded)
		return r.Clone(), nil
	}

	if image != nil && image.Body != nil {
		if c.d.Storage == nil {
			c.log.Warn(ctx, "no image storage configured, image dropped", "name", image.Name)
		} else {
			key := imageKey(image.Name)
			if err := c.d.Storage.Upload(ctx, c.d.Bucket, key, image.Body, image.ContentType); err != nil {
				c.log.Error(ctx, "image upload failed", "key", key, "error", err)
				return models.Recipe{}, c.fail(&StorageUploadError{Path: key, Err: err})
			}
			imageURL = c.d.Storage.PublicURL(c.d.Bucket, key)
		}
	}

	nr := models.NewRecipe{
		Title:       draft.Title,
		Category:    draft.Category,
		CookingTime: draft.CookingTime,
		ImageURL:    imageURL,
		Ingredients: draft.Ingredients,
		Steps:       draft.Steps,
		CreatorID:   user.ID,
		CreatorName: user.DisplayName(),
	}
	id, err := c.d.Recipes.Insert(ctx, nr)
	if err != nil {
		c.log.Error(ctx, "insert recipe failed", "error", err)
		return models.Recipe{}, c.fail(&RemoteWriteError{Op: "insert recipe", Err: err})
	}

	_ = c.FetchRecipes(ctx)
	c.d.Notifier.Success(MsgRecipeAdded)

	if r, ok := c.Recipe(id); ok {
		return r, nil
	}
	return models.Recipe{
		ID: id, Title: nr.Title, Category: nr.Category, CookingTime: nr.CookingTime,
		ImageURL: nr.ImageURL, Ingredients: nr.Ingredients, Steps: nr.Steps,
		CreatorID: nr.CreatorID, CreatorName: nr.CreatorName, CreatedAt: c.d.Now(),
	}, nil
}

// UpdateRecipe writes patch remotely and merges it into the cached entry on
// success. Ownership is the caller's concern.
func (c *CatalogStore) UpdateRecipe(ctx context.Context, id string, patch models.RecipePatch) (models.Recipe, error) {
	patch = normalizePatch(patch)

	cur, ok := c.Recipe(id)
	if !ok {
		return models.Recipe{}, c.fail(ErrRecipeNotFound)
	}
	merged := patch.Apply(cur)
	if err := validateRecipe(merged); err != nil {
		return models.Recipe{}, c.fail(err)
	}
	patch = cleanPatch(patch)

	if c.d.Recipes != nil && !patch.Empty() {
		if err := c.d.Recipes.Update(ctx, id, patch); err != nil {
			c.log.Error(ctx, "update recipe failed", "id", id, "error", err)
			return models.Recipe{}, c.fail(&RemoteWriteError{Op: "update recipe", Err: err})
		}
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.recipes[i] = patch.Apply(c.recipes[i])
		merged = c.recipes[i].Clone()
	}
	c.mu.Unlock()

	c.d.Notifier.Success(MsgRecipeUpdated)
	return merged, nil
}

// DeleteRecipe removes the recipe remotely, then from the cache and the
// in-memory bookmark set.
func (c *CatalogStore) DeleteRecipe(ctx context.Context, id string) error {
	if c.d.Recipes != nil {
		if err := c.d.Recipes.Delete(ctx, id); err != nil {
			c.log.Error(ctx, "delete recipe failed", "id", id, "error", err)
			return c.fail(&RemoteWriteError{Op: "delete recipe", Err: err})
		}
	} else if _, ok := c.Recipe(id); !ok {
		return c.fail(ErrRecipeNotFound)
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.recipes = slices.Delete(c.recipes, i, i+1)
	}
	if i := slices.Index(c.bookmarks, id); i >= 0 {
		c.bookmarks = slices.Delete(c.bookmarks, i, i+1)
	}
	c.mu.Unlock()

	c.d.Notifier.Success(MsgRecipeDeleted)
	return nil
}

// ToggleBookmark flips recipeID in the user's bookmark set and moves the
// recipe's like counter with it. It reports whether the recipe is now
// bookmarked.
//
// With a BookmarkWriter both writes share one transaction. Otherwise the
// likes are read, the bookmark list written and the likes written in turn;
// a failed likes write keeps the bookmark change.
func (c *CatalogStore) ToggleBookmark(ctx context.Context, recipeID string) (bool, error) {
	user := c.d.Identity.User()
	if user == nil {
		return false, c.fail(ErrNotAuthenticated)
	}

	c.mu.RLock()
	next := slices.Clone(c.bookmarks)
	c.mu.RUnlock()

	delta := 1
	if i := slices.Index(next, recipeID); i >= 0 {
		next = slices.Delete(next, i, i+1)
		delta = -1
	} else {
		next = append(next, recipeID)
	}
	if next == nil {
		next = []string{}
	}

	var likesErr error
	newLikes := -1

	switch {
	case c.d.Bookmarks != nil:
		if err := c.d.Bookmarks.ApplyBookmark(ctx, user.ID, recipeID, next, delta); err != nil {
			c.log.Error(ctx, "bookmark toggle failed", "recipe_id", recipeID, "error", err)
			return delta < 0, c.fail(&RemoteWriteError{Op: "toggle bookmark", Err: err})
		}
	case c.d.Profiles != nil:
		likes := 0
		counted := c.d.Recipes != nil
		if counted {
			n, err := c.d.Recipes.Likes(ctx, recipeID)
			switch {
			case err == nil:
				likes = n
			case delta < 0 && errors.Is(err, backend.ErrNotFound):
				// The recipe is gone; only the bookmark list changes.
				counted = false
			default:
				c.log.Error(ctx, "read likes failed", "recipe_id", recipeID, "error", err)
				return delta < 0, c.fail(&RemoteReadError{Op: "read likes", Err: err})
			}
		}
		if err := c.d.Profiles.SetBookmarks(ctx, user.ID, next); err != nil {
			c.log.Error(ctx, "write bookmarks failed", "user_id", user.ID, "error", err)
			return delta < 0, c.fail(&RemoteWriteError{Op: "write bookmarks", Err: err})
		}
		if counted {
			newLikes = max(likes+delta, 0)
			if err := c.d.Recipes.SetLikes(ctx, recipeID, newLikes); err != nil {
				c.log.Error(ctx, "write likes failed, bookmark kept", "recipe_id", recipeID, "error", err)
				likesErr = &RemoteWriteError{Op: "write likes", Err: err}
				newLikes = -1
			}
		}
	}

	c.mu.Lock()
	c.bookmarks = next
	if i := c.indexOf(recipeID); i >= 0 && likesErr == nil {
		if newLikes >= 0 {
			c.recipes[i].Likes = newLikes
		} else {
			c.recipes[i].Likes = max(c.recipes[i].Likes+delta, 0)
		}
	}
	c.mu.Unlock()
	c.saveLocalBookmarks(ctx, user.ID, next)

	if likesErr != nil {
		return delta > 0, c.fail(likesErr)
	}
	if delta > 0 {
		c.d.Notifier.Success(MsgBookmarkAdded)
	} else {
		c.d.Notifier.Success(MsgBookmarkRemoved)
	}
	return delta > 0, nil
}

// LoadBookmarks refreshes the bookmark set for the current user. The profile
// list wins and is mirrored locally; the local copy is used when the profile
// cannot be read. Nobody logged in clears the set.
func (c *CatalogStore) LoadBookmarks(ctx context.Context) error {
	user := c.d.Identity.User()
	if user == nil {
		c.setBookmarks(nil)
		return nil
	}

	if c.d.Profiles != nil {
		list, err := c.d.Profiles.Bookmarks(ctx, user.ID)
		if err == nil {
			list = dedupe(list)
			c.setBookmarks(list)
			c.saveLocalBookmarks(ctx, user.ID, list)
			return nil
		}
		c.log.Warn(ctx, "profile bookmarks unavailable, using local copy", "error", err)
	}

	if c.d.Local == nil {
		c.setBookmarks(nil)
		return nil
	}
	var list []string
	if _, err := metadata.GetJSON(ctx, c.d.Local, metadata.BookmarksKey(user.ID), &list); err != nil {
		c.log.Error(ctx, "local bookmarks unreadable", "error", err)
		return &RemoteReadError{Op: "load bookmarks", Err: err}
	}
	c.setBookmarks(dedupe(list))
	return nil
}

// Recipes returns the cached feed, newest first.
func (c *CatalogStore) Recipes() []models.Recipe {
	return c.filter(func(models.Recipe) bool { return true })
}

func (c *CatalogStore) Recipe(id string) (models.Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.recipes[i].Clone(), true
	}
	return models.Recipe{}, false
}

func (c *CatalogStore) RecipesByCreator(creatorID string) []models.Recipe {
	return c.filter(func(r models.Recipe) bool { return r.CreatorID == creatorID })
}

// BookmarkedRecipes returns the cached recipes in the bookmark set, in feed
// order. Bookmarked ids missing from the cache are skipped.
func (c *CatalogStore) BookmarkedRecipes() []models.Recipe {
	c.mu.RLock()
	set := make(map[string]struct{}, len(c.bookmarks))
	for _, id := range c.bookmarks {
		set[id] = struct{}{}
	}
	c.mu.RUnlock()

	return c.filter(func(r models.Recipe) bool {
		_, ok := set[r.ID]
		return ok
	})
}

func (c *CatalogStore) IsBookmarked(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.bookmarks, id)
}

func (c *CatalogStore) Bookmarks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.bookmarks)
}

// Search matches query against titles case-insensitively. An empty category
// or "All" matches every category.
func (c *CatalogStore) Search(query, category string) []models.Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)
	all := category == "" || strings.EqualFold(category, models.CategoryAll)

	return c.filter(func(r models.Recipe) bool {
		if !all && !strings.EqualFold(string(r.Category), category) {
			return false
		}
		return q == "" || strings.Contains(strings.ToLower(r.Title), q)
	})
}

// Categories lists the distinct categories present in the cache in the
// order they first appear.
func (c *CatalogStore) Categories() []models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Category
	for _, r := range c.recipes {
		if !slices.Contains(out, r.Category) {
			out = append(out, r.Category)
		}
	}
	return out
}

func (c *CatalogStore) filter(keep func(models.Recipe) bool) []models.Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Recipe, 0, len(c.recipes))
	for _, r := range c.recipes {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// indexOf must be called with c.mu held.
func (c *CatalogStore) indexOf(id string) int {
	return slices.IndexFunc(c.recipes, func(r models.Recipe) bool { return r.ID == id })
}

func (c *CatalogStore) setBookmarks(list []string) {
	c.mu.Lock()
	c.bookmarks = list
	c.mu.Unlock()
}

func (c *CatalogStore) saveLocalBookmarks(ctx context.Context, userID string, list []string) {
	if c.d.Local == nil {
		return
	}
	if err := metadata.SetJSON(ctx, c.d.Local, metadata.BookmarksKey(userID), list); err != nil {
		c.log.Warn(ctx, "local bookmarks not saved", "error", err)
	}
}

// fail raises the error toast for err and returns it.
func (c *CatalogStore) fail(err error) error {
	c.d.Notifier.Error(Message(err))
	return err
}

func imageKey(name string) string {
	return "recipes/" + uuid.NewString() + strings.ToLower(path.Ext(name))
}

func normalizePatch(p models.RecipePatch) models.RecipePatch {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
	}
	if p.ImageURL != nil {
		u := strings.TrimSpace(*p.ImageURL)
		p.ImageURL = &u
	}
	p.Ingredients = trimList(p.Ingredients)
	p.Steps = trimList(p.Steps)
	return p
}

// cleanPatch drops blank list entries once the patch has been validated.
func cleanPatch(p models.RecipePatch) models.RecipePatch {
	if p.Ingredients != nil {
		p.Ingredients = CleanList(p.Ingredients)
	}
	if p.Steps != nil {
		p.Steps = CleanList(p.Steps)
	}
	return p
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
