package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/search"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

const (
	MinImages = 1
	MaxImages = 5
)

type CatalogService struct {
	Repo       *repo.GormRepo
	Categories *CategoryService
	Images     *ImageReleaser
	Index      search.Indexer
}

// clampIndex forces i into [0, n-1].
func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func validateImages(refs []string) error {
	if len(refs) < MinImages {
		return fmt.Errorf("%w: at least %d image is required", ErrValidation, MinImages)
	}
	if len(refs) > MaxImages {
		return fmt.Errorf("%w: at most %d images are allowed", ErrValidation, MaxImages)
	}
	for _, ref := range refs {
		if strings.TrimSpace(ref) == "" {
			return fmt.Errorf("%w: empty image reference", ErrValidation)
		}
	}
	return nil
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	return nil
}

func validateStock(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	return nil
}

func parseCondition(v string) (models.Condition, error) {
	c := models.Condition(strings.ToLower(strings.TrimSpace(v)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown condition %q", ErrValidation, v)
	}
	return c, nil
}

func (s *CatalogService) reindex(ctx context.Context, a *models.Article) {
	if err := s.Index.IndexArticle(ctx, a); err != nil {
		logging.FromContext(ctx).Warn("index_article_error", "article_id", a.ID, "error", err)
	}
}

func (s *CatalogService) unindex(ctx context.Context, id uuid.UUID) {
	if err := s.Index.DeleteArticle(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("unindex_article_error", "article_id", id, "error", err)
	}
}

func (s *CatalogService) Create(ctx context.Context, actor uuid.UUID, req transport.CreateArticleRequest) (*models.Article, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description required", ErrValidation)
	}
	if req.Price == nil {
		return nil, fmt.Errorf("%w: price required", ErrValidation)
	}
	if err := validatePrice(*req.Price); err != nil {
		return nil, err
	}
	cond, err := parseCondition(req.Condition)
	if err != nil {
		return nil, err
	}
	stock := 1
	if req.Stock != nil {
		stock = *req.Stock
	}
	if err := validateStock(stock); err != nil {
		return nil, err
	}
	if err := validateImages(req.Images); err != nil {
		return nil, err
	}
	cat, err := s.Categories.Resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	a := &models.Article{
		Title:          title,
		Description:    req.Description,
		Price:          *req.Price,
		Condition:      cond,
		Category:       cat.Name,
		Stock:          stock,
		MainImageIndex: clampIndex(req.MainImageIndex, len(req.Images)),
		CreatedBy:      actor,
	}
	a.SetImages(req.Images)

	if err := s.Repo.CreateArticle(ctx, a); err != nil {
		return nil, err
	}
	s.reindex(ctx, a)
	return a, nil
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	a, err := s.Repo.GetArticle(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: article %s", ErrNotFound, id)
		}
		return nil, err
	}
	return a, nil
}

func (s *CatalogService) List(ctx context.Context, offset, limit int) (int64, []models.Article, error) {
	return s.Repo.ListArticles(ctx, offset, limit)
}

// Search resolves full-text hits to articles, keeping the index ranking and
// skipping hits whose article no longer exists.
func (s *CatalogService) Search(ctx context.Context, q string, offset, limit int) (int64, []models.Article, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: query required", ErrValidation)
	}

	total, ids, err := s.Index.Search(ctx, q, offset, limit)
	if err != nil {
		return 0, nil, err
	}

	found, err := s.Repo.GetArticlesByIDs(ctx, ids)
	if err != nil {
		return 0, nil, err
	}
	byID := make(map[uuid.UUID]models.Article, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	items := make([]models.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			items = append(items, a)
		}
	}
	return total, items, nil
}

// Update applies a partial update. When KeepImages or NewImages is present the
// image list becomes keep ++ new, and dropped images are released.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req transport.UpdateArticleRequest) (*models.Article, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return nil, fmt.Errorf("%w: title required", ErrValidation)
		}
		a.Title = t
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, fmt.Errorf("%w: description required", ErrValidation)
		}
		a.Description = *req.Description
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return nil, err
		}
		a.Price = *req.Price
	}
	if req.Condition != nil {
		cond, err := parseCondition(*req.Condition)
		if err != nil {
			return nil, err
		}
		a.Condition = cond
	}
	if req.Category != nil {
		cat, err := s.Categories.Resolve(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		a.Category = cat.Name
	}
	if req.Stock != nil {
		if err := validateStock(*req.Stock); err != nil {
			return nil, err
		}
		a.Stock = *req.Stock
	}

	old := a.ImageRefs()
	replace := req.KeepImages != nil || len(req.NewImages) > 0
	var removed []string
	if replace {
		keep := old
		if req.KeepImages != nil {
			keep = *req.KeepImages
		}
		current := make(map[string]struct{}, len(old))
		for _, ref := range old {
			current[ref] = struct{}{}
		}
		kept := make(map[string]struct{}, len(keep))
		for _, ref := range keep {
			if _, ok := current[ref]; !ok {
				return nil, fmt.Errorf("%w: image %q is not on this article", ErrValidation, ref)
			}
			kept[ref] = struct{}{}
		}

		next := make([]string, 0, len(keep)+len(req.NewImages))
		next = append(next, keep...)
		next = append(next, req.NewImages...)
		if err := validateImages(next); err != nil {
			return nil, err
		}

		for _, ref := range old {
			if _, ok := kept[ref]; !ok {
				removed = append(removed, ref)
			}
		}
		a.SetImages(next)
	}

	if req.MainImageIndex != nil {
		a.MainImageIndex = *req.MainImageIndex
	}
	a.MainImageIndex = clampIndex(a.MainImageIndex, len(a.Images))

	if err := s.Repo.UpdateArticle(ctx, a, replace); err != nil {
		return nil, err
	}

	s.Images.Release(ctx, removed, a.ID)
	s.reindex(ctx, a)
	return a, nil
}

// Delete removes the article and releases its images.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteArticle(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: article %s", ErrNotFound, id)
		}
		return err
	}

	s.Images.Release(ctx, a.ImageRefs(), a.ID)
	s.unindex(ctx, id)
	return nil
}

func (s *CatalogService) Export(ctx context.Context) ([]models.Article, error) {
	return s.Repo.AllArticles(ctx)
}
