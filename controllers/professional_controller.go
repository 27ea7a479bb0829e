package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fixup-labs/fixup-api/middleware"
	"github.com/fixup-labs/fixup-api/models"
	"github.com/fixup-labs/fixup-api/services"
)

// RegisterProfessionalRequest represents the request body for registering a professional profile
type RegisterProfessionalRequest struct {
	BusinessName      string   `json:"business_name" binding:"required"`
	State             string   `json:"state" binding:"required"`
	ServiceAreas      []string `json:"service_areas" binding:"required,min=1"`
	ServiceCategory   string   `json:"service_category" binding:"required"`
	LicenseNumber     string   `json:"license_number"`
	InsuranceProvider string   `json:"insurance_provider"`
	YearsExperience   int      `json:"years_experience" binding:"omitempty,gte=0"`
}

// RegisterProfessional handles POST /api/v1/register-professional - creates
// or updates the caller's professional profile. Verification status always
// starts out pending and is never writable by the caller.
func RegisterProfessional(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req RegisterProfessionalRequest
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

	if len(req.ServiceAreas) > models.MaxServiceAreas {
		req.ServiceAreas = req.ServiceAreas[:models.MaxServiceAreas]
	}

	store := services.GetProfileStore()
	now := time.Now().UTC()

	pro := &models.Professional{
		ID:                 userID,
		BusinessName:       req.BusinessName,
		State:              req.State,
		ServiceAreas:       req.ServiceAreas,
		ServiceCategory:    req.ServiceCategory,
		LicenseNumber:      req.LicenseNumber,
		InsuranceProvider:  req.InsuranceProvider,
		YearsExperience:    req.YearsExperience,
		VerificationStatus: models.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// Re-registration keeps creation time and any verification already granted
	if existing, err := store.GetProfessional(c.Request.Context(), userID); err == nil {
		pro.CreatedAt = existing.CreatedAt
		pro.VerificationStatus = existing.VerificationStatus
	}

	if err := store.PutProfessional(c.Request.Context(), pro); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save professional profile",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    pro,
	})
}
