package controllers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fixup-labs/fixup-api/models"
	"github.com/fixup-labs/fixup-api/services"
)

func TestRegisterProfessional(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Successfully register a professional",
			requestBody: map[string]interface{}{
				"business_name":    "Denver Pipeworks",
				"state":            "CO",
				"service_areas":    []string{"Denver", "Aurora"},
				"service_category": "plumbing",
				"license_number":   "PL-4412",
				"years_experience": 8,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Fail without business name",
			requestBody: map[string]interface{}{
				"state":            "CO",
				"service_areas":    []string{"Denver"},
				"service_category": "plumbing",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with empty service areas",
			requestBody: map[string]interface{}{
				"business_name":    "Denver Pipeworks",
				"state":            "CO",
				"service_areas":    []string{},
				"service_category": "plumbing",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with negative experience",
			requestBody: map[string]interface{}{
				"business_name":    "Denver Pipeworks",
				"state":            "CO",
				"service_areas":    []string{"Denver"},
				"service_category": "plumbing",
				"years_experience": -1,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services.NewMockProfileStore().SetAsMockForTesting()

			router := setupTestRouter()
			router.POST("/register-professional", mockAuthMiddleware("auth0|pro"), RegisterProfessional)

			w, response := performJSON(t, router, http.MethodPost, "/register-professional", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorCode(t, response, tt.expectedError)
				return
			}

			data := response["data"].(map[string]interface{})
			assert.Equal(t, "auth0|pro", data["id"])
			assert.Equal(t, models.VerificationPending, data["verification_status"])
		})
	}
}

func TestRegisterProfessional_TruncatesServiceAreas(t *testing.T) {
	services.NewMockProfileStore().SetAsMockForTesting()

	areas := make([]string, 0, models.MaxServiceAreas+5)
	for i := 0; i < models.MaxServiceAreas+5; i++ {
		areas = append(areas, fmt.Sprintf("Area %d", i))
	}

	router := setupTestRouter()
	router.POST("/register-professional", mockAuthMiddleware("auth0|pro"), RegisterProfessional)

	w, response := performJSON(t, router, http.MethodPost, "/register-professional", map[string]interface{}{
		"business_name":    "Everywhere Repairs",
		"state":            "CO",
		"service_areas":    areas,
		"service_category": "general_maintenance",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Len(t, data["service_areas"], models.MaxServiceAreas)
}

func TestRegisterProfessional_ReRegistration(t *testing.T) {
	profileStore := services.NewMockProfileStore()
	profileStore.SetAsMockForTesting()

	router := setupTestRouter()
	router.POST("/register-professional", mockAuthMiddleware("auth0|pro"), RegisterProfessional)

	w, first := performJSON(t, router, http.MethodPost, "/register-professional", map[string]interface{}{
		"business_name":    "Denver Pipeworks",
		"state":            "CO",
		"service_areas":    []string{"Denver"},
		"service_category": "plumbing",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Grant verification out of band; a re-registration must not reset it
	pro, err := profileStore.GetProfessional(context.Background(), "auth0|pro")
	assert.NoError(t, err)
	pro.VerificationStatus = models.VerificationVerified
	assert.NoError(t, profileStore.PutProfessional(context.Background(), pro))

	w, second := performJSON(t, router, http.MethodPost, "/register-professional", map[string]interface{}{
		"business_name":    "Denver Pipeworks LLC",
		"state":            "CO",
		"service_areas":    []string{"Denver", "Boulder"},
		"service_category": "plumbing",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	firstData := first["data"].(map[string]interface{})
	secondData := second["data"].(map[string]interface{})
	assert.Equal(t, "Denver Pipeworks LLC", secondData["business_name"])
	assert.Equal(t, models.VerificationVerified, secondData["verification_status"])
	assert.Equal(t, firstData["created_at"], secondData["created_at"])
}
