// Package post holds the business logic for authoring and reading posts.
package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/lib/slug"
	"github.com/pressgate/pressgate/internal/models"
)

// ErrNotFound is returned when the requested post does not exist.
var ErrNotFound = errors.New("post not found")

// ErrForbidden is returned when the actor may not mutate the post.
var ErrForbidden = errors.New("not the author of this post")

// Repository is the storage contract for posts.
type Repository interface {
	CreatePost(ctx context.Context, post models.Post) (uuid.UUID, error)
	UpdatePost(ctx context.Context, post models.Post) (int, error)
	RemovePost(ctx context.Context, id uuid.UUID) (int, error)
	GetPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetPublishedPostBySlug(ctx context.Context, slug string) (*models.PostWithAuthor, error)
	ListPublishedPosts(ctx context.Context, limit, offset int) ([]*models.PostWithAuthor, error)
	ListPostsByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*models.Post, error)
	ListAllPosts(ctx context.Context, limit, offset int) ([]*models.Post, error)
	SlugExistsForPublished(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
}

// Service implements post authoring and the public read paths.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New creates a post Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Create stores a new post for the author. Published posts get a slug
// derived from the title, made unique among published posts by suffixing
// a fragment of the post id on collision.
func (s *Service) Create(ctx context.Context, author *models.Profile, req models.CreatePostRequest) (*models.Post, error) {
	const op = "post.Create"

	p := models.Post{
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  author.ID,
		IsPremium: req.IsPremium,
		Status:    req.Status,
	}
	if req.Excerpt != "" {
		p.Excerpt = &req.Excerpt
	}

	if req.Status == models.PostStatusPublished {
		chosen, err := s.chooseSlug(ctx, req.Title, uuid.Nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Slug = &chosen
	}

	id, err := s.repo.CreatePost(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("post created",
		slog.String("post_id", id.String()),
		slog.String("author_id", author.ID.String()),
		slog.String("status", created.Status))
	return created, nil
}

// Update overwrites the editable fields of a post. Only the owning author
// or an admin may update; a post published for the first time gets its
// slug assigned here.
func (s *Service) Update(ctx context.Context, actor *models.Profile, id uuid.UUID, req models.UpdatePostRequest) (*models.Post, error) {
	const op = "post.Update"

	existing, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	p := *existing
	p.Title = req.Title
	p.Content = req.Content
	p.IsPremium = req.IsPremium
	p.Status = req.Status
	if req.Excerpt != "" {
		p.Excerpt = &req.Excerpt
	} else {
		p.Excerpt = nil
	}

	if p.Status == models.PostStatusPublished && p.Slug == nil {
		chosen, err := s.chooseSlug(ctx, p.Title, p.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Slug = &chosen
	}

	if _, err := s.repo.UpdatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// Remove deletes a post. Only the owning author or an admin may delete.
func (s *Service) Remove(ctx context.Context, actor *models.Profile, id uuid.UUID) error {
	const op = "post.Remove"

	existing, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if existing.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}

	if _, err := s.repo.RemovePost(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("post removed", slog.String("post_id", id.String()))
	return nil
}

// GetPublishedBySlug returns a published post with its author for the
// public read path.
func (s *Service) GetPublishedBySlug(ctx context.Context, slugStr string) (*models.PostWithAuthor, error) {
	const op = "post.GetPublishedBySlug"

	p, err := s.repo.GetPublishedPostBySlug(ctx, slugStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPublished returns published posts with authors, newest first.
func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]*models.PostWithAuthor, error) {
	const op = "post.ListPublished"

	result, err := s.repo.ListPublishedPosts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListByAuthor returns the author's own posts, drafts included.
func (s *Service) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*models.Post, error) {
	const op = "post.ListByAuthor"

	result, err := s.repo.ListPostsByAuthor(ctx, authorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAll returns every post for the admin screen.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	const op = "post.ListAll"

	result, err := s.repo.ListAllPosts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *Service) chooseSlug(ctx context.Context, title string, excludeID uuid.UUID) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = uuid.NewString()[:8]
	}

	taken, err := s.repo.SlugExistsForPublished(ctx, base, excludeID)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return base + "-" + uuid.NewString()[:8], nil
}
