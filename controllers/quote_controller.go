package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fixup-labs/fixup-api/middleware"
	"github.com/fixup-labs/fixup-api/models"
	"github.com/fixup-labs/fixup-api/services"
)

// SubmitQuoteRequest represents the request body for submitting a quote
type SubmitQuoteRequest struct {
	JobID        string  `json:"jobId" binding:"required"`
	PriceMin     float64 `json:"priceMin" binding:"required,gt=0"`
	PriceMax     float64 `json:"priceMax" binding:"required,gtefield=PriceMin"`
	Availability string  `json:"availability"`
	Message      string  `json:"message"`
}

// UpdateQuoteRequest represents the request body for accepting or declining a quote
type UpdateQuoteRequest struct {
	JobID   string `json:"jobId" binding:"required"`
	QuoteID string `json:"quoteId" binding:"required"`
	Action  string `json:"action" binding:"required,oneof=accept decline"`
	Slot    string `json:"slot"`
}

// SubmitQuote handles POST /api/v1/job-quotes - submits or resubmits a quote
// on an open job. One non-declined quote per professional per job: a
// resubmission overwrites the mutable fields but keeps the quote's identity.
func SubmitQuote(c *gin.Context) {
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

	var req SubmitQuoteRequest
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

	// Only registered professionals can quote
	if _, err := services.GetProfileStore().GetProfessional(c.Request.Context(), userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "A professional profile is required to submit quotes",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load professional profile",
			},
		})
		return
	}

	store := services.GetJobStore()
	job, err := store.GetJob(c.Request.Context(), req.JobID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "JOB_NOT_FOUND",
					"message": "Job not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load job",
			},
		})
		return
	}

	if job.Status != models.JobStatusOpen {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": "Quotes can only be submitted on open jobs",
			},
		})
		return
	}

	now := time.Now().UTC()
	if existing := job.QuoteByProfessional(userID); existing != nil {
		// Resubmission: overwrite mutable fields, keep id and createdAt
		existing.PriceMin = req.PriceMin
		existing.PriceMax = req.PriceMax
		existing.Availability = req.Availability
		existing.Message = req.Message
		existing.Status = models.QuoteStatusPending
		existing.UpdatedAt = now
	} else {
		job.Quotes = append(job.Quotes, models.Quote{
			ID:             uuid.NewString(),
			ProfessionalID: userID,
			PriceMin:       req.PriceMin,
			PriceMax:       req.PriceMax,
			Availability:   req.Availability,
			Message:        req.Message,
			Status:         models.QuoteStatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		job.QuotedBy = append(job.QuotedBy, userID)
	}
	job.UpdatedAt = now

	if err := store.PutJob(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save quote",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}

// ListQuotes handles GET /api/v1/job-quotes?jobId= - the job owner sees all
// quotes, a quoting professional sees only their own.
func ListQuotes(c *gin.Context) {
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

	jobID := c.Query("jobId")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "jobId is required",
			},
		})
		return
	}

	job, err := services.GetJobStore().GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "JOB_NOT_FOUND",
					"message": "Job not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load job",
			},
		})
		return
	}

	if job.UserID == userID {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    job.Quotes,
		})
		return
	}

	if quote := job.QuoteByProfessional(userID); quote != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    []models.Quote{*quote},
		})
		return
	}

	c.JSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FORBIDDEN",
			"message": "You do not have permission to view quotes on this job",
		},
	})
}

// UpdateQuote handles PATCH /api/v1/job-quotes - the job owner accepts or
// declines a quote. Accepting declines every sibling quote and schedules the
// job; a scheduled job rejects any further accept or decline.
func UpdateQuote(c *gin.Context) {
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

	var req UpdateQuoteRequest
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

	store := services.GetJobStore()
	job, err := store.GetJob(c.Request.Context(), req.JobID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "JOB_NOT_FOUND",
					"message": "Job not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load job",
			},
		})
		return
	}

	// Only the job owner decides on quotes
	if job.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the job owner can act on quotes",
			},
		})
		return
	}

	// A scheduled job is terminal in this flow; re-acceptance is rejected
	if job.Status != models.JobStatusOpen {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": "This job is already scheduled",
			},
		})
		return
	}

	target := job.QuoteByID(req.QuoteID)
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUOTE_NOT_FOUND",
				"message": "Quote not found on this job",
			},
		})
		return
	}

	now := time.Now().UTC()
	switch req.Action {
	case "accept":
		for i := range job.Quotes {
			if job.Quotes[i].ID == req.QuoteID {
				job.Quotes[i].Status = models.QuoteStatusAccepted
			} else {
				job.Quotes[i].Status = models.QuoteStatusDeclined
			}
			job.Quotes[i].UpdatedAt = now
		}
		job.Status = models.JobStatusScheduled
		job.ScheduledSlot = req.Slot
		if job.ScheduledSlot == "" {
			job.ScheduledSlot = target.Availability
		}

	case "decline":
		target.Status = models.QuoteStatusDeclined
		target.UpdatedAt = now
	}
	job.UpdatedAt = now

	if err := store.PutJob(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update job",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}
