package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/models"
)

// CreatePost inserts a new post and returns its id.
func (s *Storage) CreatePost(ctx context.Context, post models.Post) (uuid.UUID, error) {
	const op = "storage.CreatePost"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID uuid.UUID
	query := `INSERT INTO posts (title, content, excerpt, author_id, is_premium, status, slug)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		post.Title, post.Content, post.Excerpt, post.AuthorID,
		post.IsPremium, post.Status, post.Slug).Scan(&newID); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdatePost overwrites the editable fields of a post and returns the
// number of affected rows.
func (s *Storage) UpdatePost(ctx context.Context, post models.Post) (int, error) {
	const op = "storage.UpdatePost"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE posts
			  SET title = $1, content = $2, excerpt = $3, is_premium = $4,
			      status = $5, slug = $6, updated_at = now()
			  WHERE id = $7`
	result, err := s.DB.ExecContext(ctx, query,
		post.Title, post.Content, post.Excerpt, post.IsPremium,
		post.Status, post.Slug, post.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemovePost deletes a post by id and returns the number of deleted rows.
func (s *Storage) RemovePost(ctx context.Context, id uuid.UUID) (int, error) {
	const op = "storage.RemovePost"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM posts WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetPostByID returns a post regardless of status. Used by the author
// dashboard and the admin screens.
func (s *Storage) GetPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	const op = "storage.GetPostByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, content, excerpt, author_id, is_premium, status, slug,
			      created_at, updated_at
			  FROM posts
			  WHERE id = $1`
	var p models.Post
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.AuthorID,
		&p.IsPremium, &p.Status, &p.Slug, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// GetPublishedPostBySlug returns a published post with its author joined.
// Fetching by slug already filters to published rows, so unpublished posts
// are not reachable through this path.
func (s *Storage) GetPublishedPostBySlug(ctx context.Context, slug string) (*models.PostWithAuthor, error) {
	const op = "storage.GetPublishedPostBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.title, p.content, p.excerpt, p.author_id, p.is_premium,
			      p.status, p.slug, p.created_at, p.updated_at,
			      pr.full_name, pr.email
			  FROM posts p
			  JOIN profiles pr ON pr.id = p.author_id
			  WHERE p.slug = $1 AND p.status = 'published'`
	var p models.PostWithAuthor
	row := s.DB.QueryRowContext(ctx, query, slug)
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.AuthorID,
		&p.IsPremium, &p.Status, &p.Slug, &p.CreatedAt, &p.UpdatedAt,
		&p.AuthorName, &p.AuthorEmail); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// ListPublishedPosts returns published posts with authors, newest first.
func (s *Storage) ListPublishedPosts(ctx context.Context, limit, offset int) ([]*models.PostWithAuthor, error) {
	const op = "storage.ListPublishedPosts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.title, p.content, p.excerpt, p.author_id, p.is_premium,
			      p.status, p.slug, p.created_at, p.updated_at,
			      pr.full_name, pr.email
			  FROM posts p
			  JOIN profiles pr ON pr.id = p.author_id
			  WHERE p.status = 'published'
			  ORDER BY p.created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PostWithAuthor
	for rows.Next() {
		var p models.PostWithAuthor
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.AuthorID,
			&p.IsPremium, &p.Status, &p.Slug, &p.CreatedAt, &p.UpdatedAt,
			&p.AuthorName, &p.AuthorEmail); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPostsByAuthor returns all posts of one author, drafts included,
// newest first.
func (s *Storage) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*models.Post, error) {
	const op = "storage.ListPostsByAuthor"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, content, excerpt, author_id, is_premium, status, slug,
			      created_at, updated_at
			  FROM posts
			  WHERE author_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, authorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.AuthorID,
			&p.IsPremium, &p.Status, &p.Slug, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllPosts returns every post regardless of status, newest first.
// Admin only.
func (s *Storage) ListAllPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	const op = "storage.ListAllPosts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, content, excerpt, author_id, is_premium, status, slug,
			      created_at, updated_at
			  FROM posts
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.AuthorID,
			&p.IsPremium, &p.Status, &p.Slug, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SlugExistsForPublished reports whether another published post already
// uses the slug.
func (s *Storage) SlugExistsForPublished(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	const op = "storage.SlugExistsForPublished"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM posts
			      WHERE slug = $1 AND status = 'published' AND id <> $2
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
