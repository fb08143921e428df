package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/recipebox/internal/backend"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// RecipesRepository implements backend.Recipes.
type RecipesRepository struct {
	db dbx.DBTX
}

func NewRecipesRepository(db dbx.DBTX) *RecipesRepository {
	return &RecipesRepository{db: db}
}

// List prefers the creator's current username and falls back to the name
// captured when the recipe was created.
func (r *RecipesRepository) List(ctx context.Context) ([]models.Recipe, error) {
	query :=
		`SELECT r.id, r.title, r.category, r.cooking_time, r.image_url,
		        r.ingredients, r.steps, r.creator_id,
		        COALESCE(p.username, r.creator_name), r.likes, r.created_at
		 FROM recipes r
		 LEFT JOIN profiles p ON p.id = r.creator_id
		 ORDER BY r.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]models.Recipe, 0)
	for rows.Next() {
		var (
			rec                models.Recipe
			category           string
			ingredients, steps []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &category, &rec.CookingTime, &rec.ImageURL,
			&ingredients, &steps, &rec.CreatorID, &rec.CreatorName, &rec.Likes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		rec.Category = models.Category(category)
		if err := decodeList(ingredients, &rec.Ingredients); err != nil {
			return nil, fmt.Errorf("decode ingredients of %s: %w", rec.ID, err)
		}
		if err := decodeList(steps, &rec.Steps); err != nil {
			return nil, fmt.Errorf("decode steps of %s: %w", rec.ID, err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return recipes, nil
}

func (r *RecipesRepository) Insert(ctx context.Context, rec models.NewRecipe) (string, error) {
	ingredients, err := encodeList(rec.Ingredients)
	if err != nil {
		return "", fmt.Errorf("encode ingredients: %w", err)
	}
	steps, err := encodeList(rec.Steps)
	if err != nil {
		return "", fmt.Errorf("encode steps: %w", err)
	}

	query :=
		`INSERT INTO recipes (title, category, cooking_time, image_url, ingredients, steps, creator_id, creator_name)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, $8)
		 RETURNING id`

	var id string
	err = r.db.QueryRowContext(ctx, query, rec.Title, string(rec.Category), rec.CookingTime, rec.ImageURL,
		ingredients, steps, rec.CreatorID, rec.CreatorName).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert recipe: %w", err)
	}
	return id, nil
}

// Update writes only the fields set in patch. An empty patch is a no-op.
func (r *RecipesRepository) Update(ctx context.Context, id string, patch models.RecipePatch) error {
	if patch.Empty() {
		return nil
	}

	b := psql.Update("recipes")
	if patch.Title != nil {
		b = b.Set("title", *patch.Title)
	}
	if patch.Category != nil {
		b = b.Set("category", string(*patch.Category))
	}
	if patch.CookingTime != nil {
		b = b.Set("cooking_time", *patch.CookingTime)
	}
	if patch.ImageURL != nil {
		b = b.Set("image_url", *patch.ImageURL)
	}
	if patch.Ingredients != nil {
		raw, err := encodeList(patch.Ingredients)
		if err != nil {
			return fmt.Errorf("encode ingredients: %w", err)
		}
		b = b.Set("ingredients", sq.Expr("?::jsonb", raw))
	}
	if patch.Steps != nil {
		raw, err := encodeList(patch.Steps)
		if err != nil {
			return fmt.Errorf("encode steps: %w", err)
		}
		b = b.Set("steps", sq.Expr("?::jsonb", raw))
	}

	query, args, err := b.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build recipe update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return requireAffected(res)
}

func (r *RecipesRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return requireAffected(res)
}

func (r *RecipesRepository) Likes(ctx context.Context, id string) (int, error) {
	var likes int
	err := r.db.QueryRowContext(ctx, `SELECT likes FROM recipes WHERE id = $1`, id).Scan(&likes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, backend.ErrNotFound
		}
		return 0, fmt.Errorf("select recipe likes: %w", err)
	}
	return likes, nil
}

func (r *RecipesRepository) SetLikes(ctx context.Context, id string, likes int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE recipes SET likes = $2 WHERE id = $1`, id, likes)
	if err != nil {
		return fmt.Errorf("update recipe likes: %w", err)
	}
	return requireAffected(res)
}

// addLikes shifts the counter by delta without letting it go negative.
func (r *RecipesRepository) addLikes(ctx context.Context, id string, delta int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE recipes SET likes = GREATEST(likes + $2, 0) WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("update recipe likes: %w", err)
	}
	return requireAffected(res)
}

func decodeList(raw []byte, dst *[]string) error {
	*dst = []string{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
