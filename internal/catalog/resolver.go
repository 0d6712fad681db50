package catalog

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
)

// CategoryResolver maps free-text category labels to category entities,
// creating missing ones. Resolved names are cached for the lifetime of the
// resolver so repeated labels across a batch hit the store once.
type CategoryResolver struct {
	repo   *repository.StoreRepository
	logger *logrus.Entry

	mu    sync.RWMutex
	cache map[string]models.Category
}

func NewCategoryResolver(repo *repository.StoreRepository, logger *logrus.Logger) *CategoryResolver {
	return &CategoryResolver{
		repo:   repo,
		logger: logger.WithField("component", "category-resolver"),
		cache:  make(map[string]models.Category),
	}
}

// Resolve splits a comma-separated label list, trims whitespace, drops empty
// labels, and returns the matching categories in label order with duplicates
// collapsed. A label whose creation fails is skipped: category failures must
// never block product creation.
func (r *CategoryResolver) Resolve(labels string) []models.Category {
	var resolved []models.Category
	seen := make(map[string]bool)

	for _, label := range strings.Split(labels, ",") {
		name := strings.TrimSpace(label)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		category, ok := r.lookup(key)
		if !ok {
			found, err := r.resolveOne(name)
			if err != nil {
				r.logger.WithError(err).WithField("category", name).Warn("Skipping unresolvable category")
				continue
			}
			category = *found
			r.store(key, category)
		}
		resolved = append(resolved, category)
	}

	return resolved
}

func (r *CategoryResolver) resolveOne(name string) (*models.Category, error) {
	category, err := r.repo.GetCategoryByName(name)
	if err == nil {
		return category, nil
	}
	if err != repository.ErrCategoryNotFound {
		return nil, err
	}

	created := &models.Category{
		Name: name,
		Slug: Slugify(name),
	}
	if err := r.repo.CreateCategory(created); err != nil {
		// Likely a concurrent create; one more lookup before giving up
		if existing, findErr := r.repo.GetCategoryByName(name); findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	r.logger.WithField("category", name).Info("Created category")
	return created, nil
}

func (r *CategoryResolver) lookup(key string) (models.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.cache[key]
	return category, ok
}

func (r *CategoryResolver) store(key string, category models.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = category
}

// Slugify lowercases a name, replaces spaces with hyphens, and strips
// everything but alphanumerics and hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
