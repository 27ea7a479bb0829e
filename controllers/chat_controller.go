package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fixup-labs/fixup-api/middleware"
	"github.com/fixup-labs/fixup-api/models"
	"github.com/fixup-labs/fixup-api/services"
)

// ChatRequest represents the request body for the chat handler. The handler
// is unauthenticated and trusts the userId from the body.
type ChatRequest struct {
	ConversationID string   `json:"conversationId"`
	UserID         string   `json:"userId" binding:"required"`
	Text           string   `json:"text" binding:"required"`
	Images         []string `json:"images"`
}

// ChatHandler handles POST /api/v1/chat-handler - appends the user's message
// to a conversation, asks the assistant for a reply, persists both, and
// scrapes best-effort hints from the reply text.
func ChatHandler(c *gin.Context) {
	var req ChatRequest
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

	store := services.GetConversationStore()
	now := time.Now().UTC()

	var conv *models.Conversation
	if req.ConversationID != "" {
		existing, err := store.GetConversation(c.Request.Context(), req.UserID, req.ConversationID)
		if err != nil && !errors.Is(err, services.ErrNotFound) {
			log.Printf("chat: failed to load conversation %s: %v", req.ConversationID, err)
			internalChatError(c)
			return
		}
		conv = existing
	}
	if conv == nil {
		conv = &models.Conversation{
			ID:        uuid.NewString(),
			UserID:    req.UserID,
			Title:     truncateTitle(req.Text),
			Messages:  []models.Message{},
			CreatedAt: now,
		}
		if req.ConversationID != "" {
			conv.ID = req.ConversationID
		}
	}

	conv.Messages = append(conv.Messages, models.Message{
		Role:      models.RoleUser,
		Content:   req.Text,
		Images:    req.Images,
		Timestamp: now,
	})

	reply, err := services.GetAssistantService().Advise(
		c.Request.Context(),
		conv.RecentMessages(models.PromptHistoryWindow),
	)
	if err != nil {
		log.Printf("chat: completion failed: %v", err)
		internalChatError(c)
		return
	}

	conv.Messages = append(conv.Messages, models.Message{
		Role:      models.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	})
	conv.UpdatedAt = time.Now().UTC()

	if err := store.PutConversation(c.Request.Context(), conv); err != nil {
		log.Printf("chat: failed to persist conversation %s: %v", conv.ID, err)
		internalChatError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"conversation_id": conv.ID,
			"reply":           reply,
			"hints":           services.ExtractAdviceHints(reply),
		},
	})
}

func internalChatError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Failed to process chat message",
		},
	})
}

// truncateTitle derives a short conversation title from the first message.
// The cut lands on a rune boundary so multi-byte text stays valid.
func truncateTitle(text string) string {
	const maxTitle = 60
	runes := []rune(text)
	if len(runes) <= maxTitle {
		return text
	}
	return string(runes[:maxTitle])
}

// GetConversation handles GET /api/v1/get-conversation?id= - returns the
// caller's conversation with the message list trimmed to the read window.
func GetConversation(c *gin.Context) {
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

	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "id is required",
			},
		})
		return
	}

	conv, err := services.GetConversationStore().GetConversation(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONVERSATION_NOT_FOUND",
					"message": "Conversation not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load conversation",
			},
		})
		return
	}

	conv.Messages = conv.RecentMessages(models.MaxConversationWindow)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conv,
	})
}

// ListConversations handles GET /api/v1/list-conversations?limit&continuationToken
func ListConversations(c *gin.Context) {
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

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "limit must be a positive integer",
				},
			})
			return
		}
		limit = parsed
	}

	page, err := services.GetConversationStore().ListConversations(
		c.Request.Context(),
		userID,
		limit,
		c.Query("continuationToken"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list conversations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page,
	})
}
