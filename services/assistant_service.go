package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	appConfig "github.com/fixup-labs/fixup-api/config"
	"github.com/fixup-labs/fixup-api/models"
	"github.com/fixup-labs/fixup-api/utils"
)

// systemInstruction frames every completion request. It is fixed; user
// content only ever appears in the message history.
const systemInstruction = "You are a knowledgeable home-repair advisor. " +
	"Diagnose the problem the homeowner describes, explain likely causes, " +
	"suggest a fix with the tools and materials needed, estimate a cost " +
	"range in dollars, rate the difficulty (easy, moderate, or hard), and " +
	"say when a licensed professional should be called instead."

// AdviceHints are best-effort fields scraped from the assistant's free-text
// reply. Extraction is regex-based and either field may be empty.
type AdviceHints struct {
	EstimatedCost string `json:"estimated_cost,omitempty"`
	Difficulty    string `json:"difficulty,omitempty"`
}

// AssistantService produces an advisory reply for a conversation window.
type AssistantService interface {
	Advise(ctx context.Context, history []models.Message) (string, error)
}

// OllamaAssistant implements AssistantService over the Ollama chat API.
type OllamaAssistant struct {
	client *api.Client
	model  string
}

var assistantServiceInstance AssistantService

// InitAssistantService initializes the assistant backed by Ollama
func InitAssistantService() (AssistantService, error) {
	cfg := appConfig.GetConfig()

	base, err := url.Parse(cfg.OllamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}

	assistantServiceInstance = &OllamaAssistant{
		client: api.NewClient(base, &http.Client{Timeout: 60 * time.Second}),
		model:  cfg.ChatModel,
	}
	return assistantServiceInstance, nil
}

// GetAssistantService returns the initialized assistant service instance
func GetAssistantService() AssistantService {
	return assistantServiceInstance
}

// SetAssistantService sets the assistant service instance (primarily for testing)
func SetAssistantService(service AssistantService) {
	assistantServiceInstance = service
}

// Advise sends the system instruction plus the trailing conversation window
// to the model and returns the full reply text. A failed call surfaces
// directly; there is no retry.
func (s *OllamaAssistant) Advise(ctx context.Context, history []models.Message) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    s.model,
		Messages: chatMessages(history),
		Stream:   &stream,
	}

	var reply strings.Builder
	err := s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	text := strings.TrimSpace(reply.String())
	if text == "" {
		return "", fmt.Errorf("chat completion returned an empty reply")
	}
	return text, nil
}

// chatMessages converts the conversation window into the wire shape, with
// the system instruction up front. Attached images travel with their turn;
// an attachment that fails to decode is dropped rather than failing the
// whole completion.
func chatMessages(history []models.Message) []api.Message {
	messages := make([]api.Message, 0, len(history)+1)
	messages = append(messages, api.Message{
		Role:    "system",
		Content: systemInstruction,
	})
	for _, m := range history {
		msg := api.Message{
			Role:    m.Role,
			Content: m.Content,
		}
		for _, attached := range m.Images {
			data, _, err := utils.DecodeImagePayload(attached)
			if err != nil {
				continue
			}
			msg.Images = append(msg.Images, api.ImageData(data))
		}
		messages = append(messages, msg)
	}
	return messages
}

var (
	costPattern       = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d+)?(?:\s*(?:-|to)\s*\$?\s?\d[\d,]*(?:\.\d+)?)?`)
	difficultyPattern = regexp.MustCompile(`(?i)\b(easy|simple|moderate|medium|hard|difficult|professional)\b`)
)

// ExtractAdviceHints scrapes a dollar amount and a difficulty keyword from
// the reply. The model output is not validated against any schema; a miss
// just leaves the field empty.
func ExtractAdviceHints(reply string) AdviceHints {
	hints := AdviceHints{}
	if m := costPattern.FindString(reply); m != "" {
		hints.EstimatedCost = strings.TrimSpace(m)
	}
	if m := difficultyPattern.FindString(reply); m != "" {
		hints.Difficulty = normalizeDifficulty(m)
	}
	return hints
}

func normalizeDifficulty(word string) string {
	switch strings.ToLower(word) {
	case "easy", "simple":
		return "easy"
	case "moderate", "medium":
		return "moderate"
	default:
		return "hard"
	}
}
