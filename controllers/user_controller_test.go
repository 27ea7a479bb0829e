package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/fixup-labs/fixup-api/middleware"
	"github.com/fixup-labs/fixup-api/models"
	"github.com/fixup-labs/fixup-api/services"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// mockAuthMiddleware simulates the JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken middleware does.
func mockAuthMiddleware(subject string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", subject)

		mockClaims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{
				Subject: subject,
			},
			CustomClaims: &middleware.CustomClaims{},
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

// performJSON runs a JSON request against the router and decodes the response
func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func assertErrorCode(t *testing.T, response map[string]interface{}, code string) {
	t.Helper()
	assert.False(t, response["success"].(bool))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, code, errorData["code"])
}

func TestRegisterUser(t *testing.T) {
	tests := []struct {
		name           string
		subject        string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:    "Successfully register a new user",
			subject: "auth0|user123",
			requestBody: map[string]interface{}{
				"name":  "Dana Homeowner",
				"email": "dana@example.com",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "auth0|user123", data["id"])
				assert.Equal(t, "Dana Homeowner", data["name"])
				assert.Equal(t, "dana@example.com", data["email"])
			},
		},
		{
			name:    "Fail with missing name",
			subject: "auth0|user123",
			requestBody: map[string]interface{}{
				"email": "dana@example.com",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:    "Fail with malformed email",
			subject: "auth0|user123",
			requestBody: map[string]interface{}{
				"name":  "Dana Homeowner",
				"email": "not-an-email",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := services.NewMockProfileStore()
			store.SetAsMockForTesting()

			router := setupTestRouter()
			router.POST("/register-user",
				mockAuthMiddleware(tt.subject),
				RegisterUser,
			)

			w, response := performJSON(t, router, http.MethodPost, "/register-user", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorCode(t, response, tt.expectedError)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestRegisterUser_UpsertKeepsCreatedAt(t *testing.T) {
	store := services.NewMockProfileStore()
	store.SetAsMockForTesting()

	router := setupTestRouter()
	router.POST("/register-user", mockAuthMiddleware("auth0|user123"), RegisterUser)

	w, first := performJSON(t, router, http.MethodPost, "/register-user", map[string]interface{}{
		"name":  "Dana Homeowner",
		"email": "dana@example.com",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, second := performJSON(t, router, http.MethodPost, "/register-user", map[string]interface{}{
		"name":  "Dana H.",
		"email": "dana.h@example.com",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	firstData := first["data"].(map[string]interface{})
	secondData := second["data"].(map[string]interface{})
	assert.Equal(t, firstData["created_at"], secondData["created_at"])
	assert.Equal(t, "Dana H.", secondData["name"])
}

func TestGetProfile(t *testing.T) {
	store := services.NewMockProfileStore()
	store.SetAsMockForTesting()

	_ = store.PutUser(t.Context(), &models.User{
		ID:    "auth0|user123",
		Name:  "Dana Homeowner",
		Email: "dana@example.com",
	})
	_ = store.PutProfessional(t.Context(), &models.Professional{
		ID:              "auth0|pro456",
		BusinessName:    "Fast Fix Plumbing",
		ServiceCategory: "plumbing",
	})
	_ = store.PutUser(t.Context(), &models.User{
		ID:    "auth0|pro456",
		Name:  "Pat Plumber",
		Email: "pat@example.com",
	})

	tests := []struct {
		name            string
		subject         string
		expectedStatus  int
		expectedError   string
		expectPro       bool
		expectedUserStr string
	}{
		{
			name:            "User without professional profile",
			subject:         "auth0|user123",
			expectedStatus:  http.StatusOK,
			expectPro:       false,
			expectedUserStr: "Dana Homeowner",
		},
		{
			name:            "User with professional profile",
			subject:         "auth0|pro456",
			expectedStatus:  http.StatusOK,
			expectPro:       true,
			expectedUserStr: "Pat Plumber",
		},
		{
			name:           "Unregistered subject gets 404",
			subject:        "auth0|nobody",
			expectedStatus: http.StatusNotFound,
			expectedError:  "USER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/get-profile", mockAuthMiddleware(tt.subject), GetProfile)

			w, response := performJSON(t, router, http.MethodGet, "/get-profile", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorCode(t, response, tt.expectedError)
				return
			}

			data := response["data"].(map[string]interface{})
			user := data["user"].(map[string]interface{})
			assert.Equal(t, tt.expectedUserStr, user["name"])

			_, hasPro := data["professional"]
			assert.Equal(t, tt.expectPro, hasPro)
		})
	}
}
