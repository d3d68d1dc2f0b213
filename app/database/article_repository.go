package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var _ ArticleRepository = (*articleRepository)(nil)

type articleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) ArticleRepository {
	return &articleRepository{db: db}
}

const articleColumns = `id, title, COALESCE(description, ''), COALESCE(content, ''),
	url, source, COALESCE(author, ''), published_at, COALESCE(image_url, ''),
	COALESCE(category, ''), COALESCE(keywords, '{}'), created_at, updated_at`

func (r *articleRepository) UpsertByURL(ctx context.Context, article Article) (*Article, error) {
	existing, err := r.getByURL(ctx, article.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing article: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO articles (title, description, content, url, source, author,
			published_at, image_url, category, keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (url) DO NOTHING
		RETURNING `+articleColumns+`
	`, article.Title, article.Description, article.Content, article.URL,
		article.Source, article.Author, article.PublishedAt, article.ImageURL,
		article.Category, pq.Array(article.Keywords))

	stored, err := scanArticle(row)
	if err == sql.ErrNoRows {
		// Lost an insert race; the winner's row is the canonical one.
		return r.getByURL(ctx, article.URL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}

	return stored, nil
}

func (r *articleRepository) getByURL(ctx context.Context, url string) (*Article, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE url = $1
	`, url)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by URL: %w", err)
	}

	return article, nil
}

func (r *articleRepository) GetPublishedSince(ctx context.Context, since time.Time) ([]Article, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE published_at >= $1
		ORDER BY published_at DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (r *articleRepository) ListArticles(ctx context.Context, source, category, keyword string, limit int) ([]Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE 1=1`
	args := []interface{}{}

	if source != "" {
		args = append(args, "%"+source+"%")
		query += fmt.Sprintf(" AND source ILIKE $%d", len(args))
	}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND LOWER(category) = LOWER($%d)", len(args))
	}
	if keyword != "" {
		args = append(args, "%"+keyword+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY published_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (r *articleRepository) UpdateContent(ctx context.Context, articleID, content string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE articles
		SET content = $2, updated_at = NOW()
		WHERE id = $1
	`, articleID, content)

	if err != nil {
		return fmt.Errorf("failed to update article content: %w", err)
	}

	return nil
}

func (r *articleRepository) GetArticleCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.Content, &a.URL, &a.Source,
		&a.Author, &a.PublishedAt, &a.ImageURL, &a.Category,
		pq.Array(&a.Keywords), &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}
