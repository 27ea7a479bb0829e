package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fixup-labs/fixup-api/services"
	"github.com/fixup-labs/fixup-api/utils"
)

// AnalyzeImageRequest represents the request body for image analysis.
// Exactly one of imageUrl and imageData must be set.
type AnalyzeImageRequest struct {
	ImageURL  string `json:"imageUrl"`
	ImageData string `json:"imageData"`
}

var imageFetchClient = &http.Client{Timeout: 15 * time.Second}

// AnalyzeImage handles POST /api/v1/image-analyzer - runs the vision model
// over an uploaded or referenced photo and maps its tags onto canned repair
// suggestions. Inline payloads are persisted to blob storage first.
func AnalyzeImage(c *gin.Context) {
	var req AnalyzeImageRequest
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

	if (req.ImageURL == "") == (req.ImageData == "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Provide exactly one of imageUrl or imageData",
			},
		})
		return
	}

	var (
		image       []byte
		contentType string
		s3Key       string
	)

	if req.ImageData != "" {
		var err error
		image, contentType, err = utils.DecodeImagePayload(req.ImageData)
		if err != nil {
			var payloadErr *utils.ImagePayloadError
			if errors.As(err, &payloadErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    payloadErr.Code,
						"message": payloadErr.Message,
					},
				})
				return
			}
			internalImageError(c)
			return
		}

		// Inline uploads are kept in blob storage; analysis proceeds even
		// if the upload fails, since the bytes are already in hand
		key, err := services.GetS3Service().UploadImage(c.Request.Context(), image, contentType)
		if err != nil {
			log.Printf("image-analyzer: blob upload failed: %v", err)
		} else {
			s3Key = key
		}
	} else {
		var err error
		image, err = fetchImage(req.ImageURL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "IMAGE_FETCH_FAILED",
					"message": "Could not fetch the image URL",
				},
			})
			return
		}
	}

	result, err := services.GetVisionService().Analyze(c.Request.Context(), image)
	if err != nil {
		log.Printf("image-analyzer: vision call failed: %v", err)
		// The stored blob is orphaned without an analysis result
		if s3Key != "" {
			if delErr := services.GetS3Service().DeleteFile(c.Request.Context(), s3Key); delErr != nil {
				log.Printf("image-analyzer: failed to delete orphaned upload %s: %v", s3Key, delErr)
			}
		}
		internalImageError(c)
		return
	}

	var imageURL string
	if s3Key != "" {
		url, err := services.GetS3Service().GetPresignedURL(c.Request.Context(), s3Key)
		if err != nil {
			log.Printf("image-analyzer: failed to presign %s: %v", s3Key, err)
		} else {
			imageURL = url
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"caption":          result.Caption,
			"tags":             result.Tags,
			"suggestions":      services.SuggestRepairs(result),
			"service_category": services.GetServiceClassifier().Classify(result.Caption),
			"s3_key":           s3Key,
			"image_url":        imageURL,
		},
	})
}

func internalImageError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Failed to analyze image",
		},
	})
}

// fetchImage downloads a referenced image, bounded by the inline size limit.
func fetchImage(url string) ([]byte, error) {
	resp, err := imageFetchClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("image-analyzer: failed to close response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status fetching image")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, utils.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > utils.MaxImageSize {
		return nil, errors.New("image too large")
	}
	if _, err := utils.SniffImageType(data); err != nil {
		return nil, err
	}
	return data, nil
}
