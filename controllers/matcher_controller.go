package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fixup-labs/fixup-api/models"
	"github.com/fixup-labs/fixup-api/services"
)

// MaxProfessionalMatches bounds the professional list returned by the matcher
const MaxProfessionalMatches = 5

// MatchRequest represents the request body for product/professional matching
type MatchRequest struct {
	Problem  string  `json:"problem" binding:"required"`
	Location string  `json:"location"`
	MaxPrice float64 `json:"maxPrice" binding:"omitempty,gt=0"`
}

// MatchProducts handles POST /api/v1/product-matcher - classifies the
// problem text into a service category, queries the product index, enriches
// the hits from the products collection, and attaches professionals covering
// the category and area.
func MatchProducts(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	category := services.GetServiceClassifier().Classify(req.Problem)

	entries, err := services.GetProductSearch().Search(c.Request.Context(), services.ProductQuery{
		Text:     req.Problem,
		Category: category,
		MaxPrice: req.MaxPrice,
		Location: req.Location,
		Limit:    services.MaxProductResults,
	})
	if err != nil {
		log.Printf("matcher: product search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Product search failed",
			},
		})
		return
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ProductID)
	}

	products, err := services.GetProductStore().GetProducts(c.Request.Context(), ids)
	if err != nil {
		log.Printf("matcher: product enrichment failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load product details",
			},
		})
		return
	}

	pros, err := matchProfessionals(c, category, req.Location)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to match professionals",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"service_category": category,
			"products":         products,
			"professionals":    pros,
		},
	})
}

// matchProfessionals queries the category and filters on service-area
// containment. The category query over-fetches because the area filter
// runs here, not in the store.
func matchProfessionals(c *gin.Context, category, location string) ([]models.Professional, error) {
	candidates, err := services.GetProfileStore().ListProfessionalsByCategory(
		c.Request.Context(),
		category,
		MaxProfessionalMatches*4,
	)
	if err != nil {
		log.Printf("matcher: professional lookup failed: %v", err)
		return nil, err
	}

	matched := make([]models.Professional, 0, MaxProfessionalMatches)
	for i := range candidates {
		if candidates[i].ServesArea(location) {
			matched = append(matched, candidates[i])
			if len(matched) == MaxProfessionalMatches {
				break
			}
		}
	}
	return matched, nil
}
