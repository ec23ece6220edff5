package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/websitekoning/koning-api/libs/db"
	"github.com/websitekoning/koning-api/services/site-service/internal/model"
)

type ContentRepository struct {
	pool *db.Pool
}

func NewContentRepository(pool *db.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

func (r *ContentRepository) Durable() bool { return true }

func (r *ContentRepository) ListPosts(ctx context.Context, limit int) ([]model.BlogPost, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, title, excerpt, content, tags, author
		FROM blog_posts
		ORDER BY created_at DESC
		LIMIT $1
	`, limitOr(limit, 20))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.BlogPost, error) {
		var p model.BlogPost
		err := row.Scan(&p.ID, &p.Title, &p.Excerpt, &p.Content, &p.Tags, &p.Author)
		return p, err
	})
}

func (r *ContentRepository) ListTestimonials(ctx context.Context, limit int) ([]model.Testimonial, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, author, role, quote, rating
		FROM testimonials
		ORDER BY created_at DESC
		LIMIT $1
	`, limitOr(limit, 20))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Testimonial, error) {
		var t model.Testimonial
		err := row.Scan(&t.ID, &t.Author, &t.Role, &t.Quote, &t.Rating)
		return t, err
	})
}

func (r *ContentRepository) SeedIfEmpty(ctx context.Context, posts []model.BlogPost, testimonials []model.Testimonial) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	written := 0
	empty, err := tableEmpty(ctx, tx, "blog_posts")
	if err != nil {
		return 0, err
	}
	if empty {
		for _, p := range posts {
			tags := p.Tags
			if tags == nil {
				tags = []string{}
			}
			author := p.Author
			if author == "" {
				author = model.DefaultAuthor
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO blog_posts (title, excerpt, content, tags, author)
				VALUES ($1, $2, $3, $4, $5)
			`, p.Title, p.Excerpt, p.Content, tags, author); err != nil {
				return 0, fmt.Errorf("insert post %q: %w", p.Title, err)
			}
			written++
		}
	}

	empty, err = tableEmpty(ctx, tx, "testimonials")
	if err != nil {
		return 0, err
	}
	if empty {
		for _, t := range testimonials {
			if _, err := tx.Exec(ctx, `
				INSERT INTO testimonials (author, role, quote, rating)
				VALUES ($1, $2, $3, $4)
			`, t.Author, t.Role, t.Quote, t.Rating); err != nil {
				return 0, fmt.Errorf("insert testimonial %q: %w", t.Author, err)
			}
			written++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return written, nil
}

// tableEmpty only accepts the fixed table names above.
func tableEmpty(ctx context.Context, tx pgx.Tx, table string) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+`)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s: %w", table, err)
	}
	return !exists, nil
}
