package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/fixup-labs/fixup-api/models"
)

// MaxProductResults bounds the product list returned by the matcher
const MaxProductResults = 10

// ProductQuery carries the filters applied on a product search.
type ProductQuery struct {
	Text     string
	Category string
	MaxPrice float64
	Location string
	Limit    int
}

// ProductSearchService queries the product search index. Results are ids
// plus index fields only; callers enrich from the products collection.
type ProductSearchService interface {
	Search(ctx context.Context, query ProductQuery) ([]models.ProductIndexEntry, error)
}

// GormProductSearch implements ProductSearchService over the relational index.
type GormProductSearch struct {
	db *gorm.DB
}

var productSearchInstance ProductSearchService

// InitProductSearch initializes the product search service
func InitProductSearch(db *gorm.DB) ProductSearchService {
	productSearchInstance = &GormProductSearch{db: db}
	return productSearchInstance
}

// GetProductSearch returns the initialized product search instance
func GetProductSearch() ProductSearchService {
	return productSearchInstance
}

// SetProductSearch sets the product search instance (primarily for testing)
func SetProductSearch(service ProductSearchService) {
	productSearchInstance = service
}

// Search matches any query term against the index text, then applies the
// category, price ceiling, and location filters. Ordering is left to the
// index; no relevance scoring happens here.
func (s *GormProductSearch) Search(ctx context.Context, query ProductQuery) ([]models.ProductIndexEntry, error) {
	limit := query.Limit
	if limit <= 0 || limit > MaxProductResults {
		limit = MaxProductResults
	}

	tx := s.db.WithContext(ctx).Model(&models.ProductIndexEntry{})

	terms := searchTerms(query.Text)
	if len(terms) > 0 {
		match := s.db.Where("search_text LIKE ?", "%"+terms[0]+"%")
		for _, term := range terms[1:] {
			match = match.Or("search_text LIKE ?", "%"+term+"%")
		}
		tx = tx.Where(match)
	}

	if query.Category != "" {
		tx = tx.Where("category = ?", query.Category)
	}
	if query.MaxPrice > 0 {
		tx = tx.Where("price <= ?", query.MaxPrice)
	}
	if query.Location != "" {
		tx = tx.Where("location = ? OR location = ''", query.Location)
	}

	var entries []models.ProductIndexEntry
	if err := tx.Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	return entries, nil
}

// searchTerms lowercases and splits the free text, dropping short noise words.
func searchTerms(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if len(f) < 3 {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
