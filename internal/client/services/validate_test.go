package services

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/recipebox/internal/backend"
	"github.com/dmitrijs2005/recipebox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDraft_RuleOrder(t *testing.T) {
	ok := draft()
	require.NoError(t, ValidateDraft(ok))

	tests := []struct {
		name   string
		mutate func(*models.RecipeDraft)
		want   error
	}{
		{"title", func(d *models.RecipeDraft) { d.Title = " "; d.CookingTime = 0 }, ErrTitleRequired},
		{"no ingredients", func(d *models.RecipeDraft) { d.Ingredients = nil; d.Steps = nil }, ErrIngredientsRequired},
		{"blank ingredient", func(d *models.RecipeDraft) { d.Ingredients = []string{"a", " "} }, ErrIngredientsRequired},
		{"no steps", func(d *models.RecipeDraft) { d.Steps = []string{}; d.Category = "Soup" }, ErrStepsRequired},
		{"cooking time", func(d *models.RecipeDraft) { d.CookingTime = -5; d.Category = "Soup" }, ErrCookingTimeInvalid},
		{"category", func(d *models.RecipeDraft) { d.Category = "Soup" }, ErrCategoryInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := draft()
			tc.mutate(&d)
			err := ValidateDraft(d)
			require.ErrorIs(t, err, tc.want)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Field)
		})
	}
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, CleanList([]string{" a", "", "  ", "b "}))
	assert.Equal(t, []string{}, CleanList(nil))
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{newAuthError(backend.ErrInvalidCredentials), MsgInvalidCredentials},
		{newAuthError(backend.ErrUserAlreadyRegistered), MsgDuplicateAccount},
		{newAuthError(errors.New("rate limited")), "rate limited"},
		{&ValidationError{Field: "title", Err: ErrTitleRequired}, "Title is required."},
		{&StorageUploadError{Path: "p", Err: errBoom}, MsgUploadFailed},
		{ErrNotAuthenticated, MsgNotAuthenticated},
		{&RemoteWriteError{Op: "delete recipe", Err: backend.ErrNotFound}, MsgRecipeNotFound},
		{&RemoteWriteError{Op: "insert recipe", Err: errBoom}, MsgGeneric},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Message(tc.err))
	}
}

func TestAuthError_Unwrap(t *testing.T) {
	err := newAuthError(backend.ErrWeakPassword)
	assert.True(t, errors.Is(err, ErrWeakPassword))
	assert.True(t, errors.Is(err, backend.ErrWeakPassword))
	assert.False(t, errors.Is(err, ErrInvalidEmail))
	assert.Equal(t, "Password should be at least 6 characters.", err.Error())
}
