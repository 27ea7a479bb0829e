package controllers

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fixup-labs/fixup-api/services"
)

// tinyPNG is a minimal payload carrying the PNG magic bytes
var tinyPNG = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}

func setupImageAnalyzer(t *testing.T, result *services.VisionResult) (*services.MockS3Service, *services.MockVisionService) {
	t.Helper()
	s3 := services.NewMockS3Service()
	s3.SetAsMockForTesting()
	vision := services.NewMockVisionService(result)
	vision.SetAsMockForTesting()
	_, err := services.InitServiceClassifier("")
	assert.NoError(t, err)
	return s3, vision
}

func TestAnalyzeImage_InlinePayload(t *testing.T) {
	s3, vision := setupImageAnalyzer(t, &services.VisionResult{
		Caption: "A ceiling with a water leak stain near the light fixture",
		Tags:    []string{"ceiling", "stain", "leak"},
	})

	router := setupTestRouter()
	router.POST("/image-analyzer", AnalyzeImage)

	w, response := performJSON(t, router, http.MethodPost, "/image-analyzer", map[string]interface{}{
		"imageData": base64.StdEncoding.EncodeToString(tinyPNG),
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "A ceiling with a water leak stain near the light fixture", data["caption"])
	assert.Equal(t, "plumbing", data["service_category"])

	suggestions := data["suggestions"].([]interface{})
	assert.NotEmpty(t, suggestions)

	// The inline payload was persisted before analysis
	s3Key := data["s3_key"].(string)
	assert.True(t, s3.FileExists(s3Key))
	assert.Equal(t, 1, s3.UploadCount())
	assert.Equal(t, tinyPNG, vision.LastImage)

	// The response carries a presigned URL for the stored blob
	imageURL := data["image_url"].(string)
	assert.Contains(t, imageURL, s3Key)
}

func TestAnalyzeImage_DataURIPrefix(t *testing.T) {
	setupImageAnalyzer(t, &services.VisionResult{Caption: "a wall"})

	router := setupTestRouter()
	router.POST("/image-analyzer", AnalyzeImage)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(tinyPNG)
	w, _ := performJSON(t, router, http.MethodPost, "/image-analyzer", map[string]interface{}{
		"imageData": payload,
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeImage_PayloadValidation(t *testing.T) {
	tests := []struct {
		name          string
		requestBody   map[string]interface{}
		expectedError string
	}{
		{
			name:          "Neither imageUrl nor imageData",
			requestBody:   map[string]interface{}{},
			expectedError: "VALIDATION_ERROR",
		},
		{
			name: "Both imageUrl and imageData",
			requestBody: map[string]interface{}{
				"imageUrl":  "https://example.com/photo.png",
				"imageData": base64.StdEncoding.EncodeToString(tinyPNG),
			},
			expectedError: "VALIDATION_ERROR",
		},
		{
			name: "Malformed base64",
			requestBody: map[string]interface{}{
				"imageData": "not-base64!!!",
			},
			expectedError: "INVALID_IMAGE_DATA",
		},
		{
			name: "Unsupported image format",
			requestBody: map[string]interface{}{
				"imageData": base64.StdEncoding.EncodeToString([]byte("GIF89a not supported")),
			},
			expectedError: "INVALID_IMAGE_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupImageAnalyzer(t, &services.VisionResult{Caption: "unused"})

			router := setupTestRouter()
			router.POST("/image-analyzer", AnalyzeImage)

			w, response := performJSON(t, router, http.MethodPost, "/image-analyzer", tt.requestBody)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assertErrorCode(t, response, tt.expectedError)
		})
	}
}

func TestAnalyzeImage_UnreachableURL(t *testing.T) {
	setupImageAnalyzer(t, &services.VisionResult{Caption: "unused"})

	router := setupTestRouter()
	router.POST("/image-analyzer", AnalyzeImage)

	w, response := performJSON(t, router, http.MethodPost, "/image-analyzer", map[string]interface{}{
		"imageUrl": "http://127.0.0.1:1/photo.png",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, response, "IMAGE_FETCH_FAILED")
}

func TestAnalyzeImage_VisionFailure(t *testing.T) {
	s3, vision := setupImageAnalyzer(t, nil)
	vision.Err = assert.AnError

	router := setupTestRouter()
	router.POST("/image-analyzer", AnalyzeImage)

	w, response := performJSON(t, router, http.MethodPost, "/image-analyzer", map[string]interface{}{
		"imageData": base64.StdEncoding.EncodeToString(tinyPNG),
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assertErrorCode(t, response, "INTERNAL_ERROR")

	// The orphaned upload was cleaned up after the failed analysis
	assert.Equal(t, 0, s3.UploadCount())
}
