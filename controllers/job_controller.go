package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fixup-labs/fixup-api/middleware"
	"github.com/fixup-labs/fixup-api/models"
	"github.com/fixup-labs/fixup-api/services"
)

// CreateJobRequest represents the request body for posting a job
type CreateJobRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Summary     string   `json:"summary"`
	BudgetMin   float64  `json:"budget_min" binding:"omitempty,gte=0"`
	BudgetMax   float64  `json:"budget_max" binding:"omitempty,gte=0"`
	Location    string   `json:"location"`
	Products    []string `json:"products"`
}

// CreateJob handles POST /api/v1/jobs - posts a new repair job for quoting
func CreateJob(c *gin.Context) {
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

	var req CreateJobRequest
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

	description := strings.TrimSpace(req.Description)
	if description == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Job description is required",
			},
		})
		return
	}
	// Truncate on rune boundaries so multi-byte text stays valid
	if runes := []rune(description); len(runes) > models.MaxJobDescriptionLength {
		description = string(runes[:models.MaxJobDescriptionLength])
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: description,
		Summary:     req.Summary,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Location:    req.Location,
		Products:    req.Products,
		Status:      models.JobStatusOpen,
		Quotes:      []models.Quote{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := services.GetJobStore().CreateJob(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create job",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    job,
	})
}

// ListJobs handles GET /api/v1/jobs?role=user|professional[&jobId=]
//   - role=user: the caller's own jobs, newest first
//   - role=professional: the open-jobs board, or with jobId set, the board
//     entry for that job plus the caller's quotes across all jobs
func ListJobs(c *gin.Context) {
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

	role := c.DefaultQuery("role", "user")
	switch role {
	case "user":
		jobs, err := services.GetJobStore().ListJobsByUser(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to list jobs",
				},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    jobs,
		})

	case "professional":
		listProfessionalJobs(c, userID)

	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "role must be user or professional",
			},
		})
	}
}

// listProfessionalJobs serves the professional job board. Without a jobId it
// returns the most recent open jobs; with one it returns the caller's quote
// tally across jobs.
func listProfessionalJobs(c *gin.Context, userID string) {
	// The board is professional-only
	if _, err := services.GetProfileStore().GetProfessional(c.Request.Context(), userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "A professional profile is required to view the job board",
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

	if c.Query("jobId") != "" {
		quoted, err := services.GetJobStore().ListJobsQuotedBy(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to list quoted jobs",
				},
			})
			return
		}

		tally := make([]gin.H, 0, len(quoted))
		for i := range quoted {
			job := &quoted[i]
			tally = append(tally, gin.H{
				"job_id":     job.ID,
				"job_title":  job.Title,
				"job_status": job.Status,
				"quote":      job.QuoteByProfessional(userID),
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    tally,
		})
		return
	}

	jobs, err := services.GetJobStore().ListOpenJobs(c.Request.Context(), services.OpenJobsBoardLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list open jobs",
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    jobs,
	})
}
