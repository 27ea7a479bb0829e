package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/fixup-labs/fixup-api/models"
	"github.com/fixup-labs/fixup-api/services"
)

func TestChatHandler(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		reply          string
		assistantErr   error
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Successfully start a new conversation",
			requestBody: map[string]interface{}{
				"userId": "auth0|homeowner",
				"text":   "My tap is leaking under the sink",
			},
			reply:          "Replace the washer. This should cost $15 - $30 and is an easy fix.",
			expectedStatus: http.StatusOK,
		},
		{
			name: "Fail without userId",
			requestBody: map[string]interface{}{
				"text": "My tap is leaking",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail without text",
			requestBody: map[string]interface{}{
				"userId": "auth0|homeowner",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Assistant failure surfaces as internal error",
			requestBody: map[string]interface{}{
				"userId": "auth0|homeowner",
				"text":   "My tap is leaking",
			},
			assistantErr:   errors.New("model unavailable"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			convStore := services.NewMockConversationStore()
			convStore.SetAsMockForTesting()
			assistant := services.NewMockAssistantService(tt.reply)
			assistant.Err = tt.assistantErr
			assistant.SetAsMockForTesting()

			router := setupTestRouter()
			router.POST("/chat-handler", ChatHandler)

			w, response := performJSON(t, router, http.MethodPost, "/chat-handler", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorCode(t, response, tt.expectedError)
				return
			}

			data := response["data"].(map[string]interface{})
			assert.NotEmpty(t, data["conversation_id"])
			assert.Equal(t, tt.reply, data["reply"])

			hints := data["hints"].(map[string]interface{})
			assert.Equal(t, "$15 - $30", hints["estimated_cost"])
			assert.Equal(t, "easy", hints["difficulty"])

			// Both turns were persisted
			conv, err := convStore.GetConversation(
				context.Background(),
				"auth0|homeowner",
				data["conversation_id"].(string),
			)
			assert.NoError(t, err)
			assert.Len(t, conv.Messages, 2)
			assert.Equal(t, models.RoleUser, conv.Messages[0].Role)
			assert.Equal(t, models.RoleAssistant, conv.Messages[1].Role)
		})
	}
}

func TestChatHandler_ContinuesConversation(t *testing.T) {
	convStore := services.NewMockConversationStore()
	convStore.SetAsMockForTesting()
	assistant := services.NewMockAssistantService("Try tightening the compression fitting.")
	assistant.SetAsMockForTesting()

	existing := &models.Conversation{
		ID:     "conv-1",
		UserID: "auth0|homeowner",
		Title:  "Leaky tap",
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "My tap is leaking"},
			{Role: models.RoleAssistant, Content: "Replace the washer."},
		},
	}
	assert.NoError(t, convStore.PutConversation(context.Background(), existing))

	router := setupTestRouter()
	router.POST("/chat-handler", ChatHandler)

	w, response := performJSON(t, router, http.MethodPost, "/chat-handler", map[string]interface{}{
		"conversationId": "conv-1",
		"userId":         "auth0|homeowner",
		"text":           "Still dripping after replacing the washer",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "conv-1", data["conversation_id"])

	conv, err := convStore.GetConversation(context.Background(), "auth0|homeowner", "conv-1")
	assert.NoError(t, err)
	assert.Len(t, conv.Messages, 4)

	// The assistant saw the recent window including the new user turn
	assert.NotEmpty(t, assistant.LastHistory)
	last := assistant.LastHistory[len(assistant.LastHistory)-1]
	assert.Equal(t, "Still dripping after replacing the washer", last.Content)
}

func TestChatHandler_DerivesTitleFromFirstMessage(t *testing.T) {
	convStore := services.NewMockConversationStore()
	convStore.SetAsMockForTesting()
	services.NewMockAssistantService("ok").SetAsMockForTesting()

	router := setupTestRouter()
	router.POST("/chat-handler", ChatHandler)

	longText := strings.Repeat("water damage on the ceiling ", 10)
	w, response := performJSON(t, router, http.MethodPost, "/chat-handler", map[string]interface{}{
		"userId": "auth0|homeowner",
		"text":   longText,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	conv, err := convStore.GetConversation(context.Background(), "auth0|homeowner", data["conversation_id"].(string))
	assert.NoError(t, err)
	assert.Len(t, conv.Title, 60)
	assert.True(t, strings.HasPrefix(longText, conv.Title))
}

func TestChatHandler_TitleKeepsRuneBoundaries(t *testing.T) {
	convStore := services.NewMockConversationStore()
	convStore.SetAsMockForTesting()
	services.NewMockAssistantService("ok").SetAsMockForTesting()

	router := setupTestRouter()
	router.POST("/chat-handler", ChatHandler)

	longText := strings.Repeat("Überschwemmung im Keller ", 10)
	w, response := performJSON(t, router, http.MethodPost, "/chat-handler", map[string]interface{}{
		"userId": "auth0|homeowner",
		"text":   longText,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	conv, err := convStore.GetConversation(context.Background(), "auth0|homeowner", data["conversation_id"].(string))
	assert.NoError(t, err)
	assert.True(t, utf8.ValidString(conv.Title))
	assert.Equal(t, 60, utf8.RuneCountInString(conv.Title))
	assert.True(t, strings.HasPrefix(longText, conv.Title))
}

func TestGetConversation(t *testing.T) {
	convStore := services.NewMockConversationStore()
	convStore.SetAsMockForTesting()

	messages := make([]models.Message, 0, 60)
	for i := 0; i < 60; i++ {
		messages = append(messages, models.Message{
			Role:    models.RoleUser,
			Content: fmt.Sprintf("message %d", i),
		})
	}
	assert.NoError(t, convStore.PutConversation(context.Background(), &models.Conversation{
		ID:       "conv-1",
		UserID:   "auth0|homeowner",
		Messages: messages,
	}))

	tests := []struct {
		name           string
		subject        string
		query          string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Returns the trimmed message window",
			subject:        "auth0|homeowner",
			query:          "?id=conv-1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing id",
			subject:        "auth0|homeowner",
			query:          "",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Unknown conversation",
			subject:        "auth0|homeowner",
			query:          "?id=conv-missing",
			expectedStatus: http.StatusNotFound,
			expectedError:  "CONVERSATION_NOT_FOUND",
		},
		{
			name:           "Another user's conversation is invisible",
			subject:        "auth0|stranger",
			query:          "?id=conv-1",
			expectedStatus: http.StatusNotFound,
			expectedError:  "CONVERSATION_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/get-conversation", mockAuthMiddleware(tt.subject), GetConversation)

			w, response := performJSON(t, router, http.MethodGet, "/get-conversation"+tt.query, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorCode(t, response, tt.expectedError)
				return
			}

			data := response["data"].(map[string]interface{})
			msgs := data["messages"].([]interface{})
			assert.Len(t, msgs, models.MaxConversationWindow)
			first := msgs[0].(map[string]interface{})
			assert.Equal(t, "message 10", first["content"])
		})
	}
}

func TestListConversations(t *testing.T) {
	convStore := services.NewMockConversationStore()
	convStore.SetAsMockForTesting()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		assert.NoError(t, convStore.PutConversation(context.Background(), &models.Conversation{
			ID:        fmt.Sprintf("conv-%d", i),
			UserID:    "auth0|homeowner",
			Title:     fmt.Sprintf("Job %d", i),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	assert.NoError(t, convStore.PutConversation(context.Background(), &models.Conversation{
		ID:     "conv-other",
		UserID: "auth0|stranger",
	}))

	router := setupTestRouter()
	router.GET("/list-conversations", mockAuthMiddleware("auth0|homeowner"), ListConversations)

	w, response := performJSON(t, router, http.MethodGet, "/list-conversations?limit=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	convs := data["conversations"].([]interface{})
	assert.Len(t, convs, 2)
	assert.Equal(t, "conv-2", convs[0].(map[string]interface{})["id"])
	token := data["continuation_token"].(string)
	assert.NotEmpty(t, token)

	w, response = performJSON(t, router, http.MethodGet, "/list-conversations?limit=2&continuationToken="+token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = response["data"].(map[string]interface{})
	convs = data["conversations"].([]interface{})
	assert.Len(t, convs, 1)
	assert.Equal(t, "conv-0", convs[0].(map[string]interface{})["id"])
	_, hasToken := data["continuation_token"]
	assert.False(t, hasToken)
}

func TestListConversations_InvalidLimit(t *testing.T) {
	services.NewMockConversationStore().SetAsMockForTesting()

	router := setupTestRouter()
	router.GET("/list-conversations", mockAuthMiddleware("auth0|homeowner"), ListConversations)

	for _, raw := range []string{"0", "-3", "abc"} {
		w, response := performJSON(t, router, http.MethodGet, "/list-conversations?limit="+raw, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorCode(t, response, "VALIDATION_ERROR")
	}
}
