package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	appConfig "github.com/fixup-labs/fixup-api/config"
)

// visionInstruction asks the model for output the tag parser can pick apart.
const visionInstruction = "Describe this photo of a possible home-repair " +
	"problem in one sentence, then on a new line starting with 'Tags:' list " +
	"short comma-separated tags for any visible damage or materials."

// VisionResult is the post-processed output of an image analysis call.
type VisionResult struct {
	Caption string   `json:"caption"`
	Tags    []string `json:"tags"`
}

// VisionService analyzes an image and returns a caption plus tags.
type VisionService interface {
	Analyze(ctx context.Context, image []byte) (*VisionResult, error)
}

// OllamaVision implements VisionService over a multimodal Ollama model.
type OllamaVision struct {
	client *api.Client
	model  string
}

var visionServiceInstance VisionService

// InitVisionService initializes the vision service backed by Ollama
func InitVisionService() (VisionService, error) {
	cfg := appConfig.GetConfig()

	base, err := url.Parse(cfg.OllamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}

	visionServiceInstance = &OllamaVision{
		client: api.NewClient(base, &http.Client{Timeout: 60 * time.Second}),
		model:  cfg.VisionModel,
	}
	return visionServiceInstance, nil
}

// GetVisionService returns the initialized vision service instance
func GetVisionService() VisionService {
	return visionServiceInstance
}

// SetVisionService sets the vision service instance (primarily for testing)
func SetVisionService(service VisionService) {
	visionServiceInstance = service
}

// Analyze sends the image to the vision model and parses the caption and
// tag line out of the reply.
func (s *OllamaVision) Analyze(ctx context.Context, image []byte) (*VisionResult, error) {
	stream := false
	req := &api.ChatRequest{
		Model: s.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: visionInstruction,
				Images:  []api.ImageData{image},
			},
		},
		Stream: &stream,
	}

	var reply strings.Builder
	err := s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vision analysis failed: %w", err)
	}

	return parseVisionReply(reply.String()), nil
}

// parseVisionReply splits the model output into a caption and tags. The
// format is only requested, never guaranteed, so parsing stays forgiving:
// everything before the Tags: line is the caption, the rest is split on
// commas.
func parseVisionReply(reply string) *VisionResult {
	result := &VisionResult{}

	lines := strings.Split(strings.TrimSpace(reply), "\n")
	var captionLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "Tags:"); ok {
			for _, tag := range strings.Split(rest, ",") {
				tag = strings.ToLower(strings.TrimSpace(tag))
				if tag != "" {
					result.Tags = append(result.Tags, tag)
				}
			}
			continue
		}
		if trimmed != "" {
			captionLines = append(captionLines, trimmed)
		}
	}

	result.Caption = strings.Join(captionLines, " ")
	return result
}

// repairSuggestions maps repair-relevant tag keywords to canned advice.
// First match per keyword; unknown tags contribute nothing.
var repairSuggestions = []struct {
	keyword    string
	suggestion string
}{
	{"crack", "Assess the crack's size and depth before patching; widening cracks can indicate structural movement."},
	{"stain", "Identify the stain type first - water stains usually mean an active leak above."},
	{"leak", "Shut off the water supply to the affected fixture and trace the leak to its source."},
	{"mold", "Treat small mold patches with a cleaning solution; large or recurring growth needs professional remediation."},
	{"rust", "Sand back surface rust and apply a rust-inhibiting primer before repainting."},
	{"hole", "Patch small holes with filler; holes larger than a fist need a backing patch."},
	{"peel", "Scrape peeling material back to a sound edge before refinishing."},
	{"rot", "Probe the wood around the rot - soft material must be cut out, not painted over."},
}

// SuggestRepairs returns the canned suggestions whose keywords appear in
// the caption or tags.
func SuggestRepairs(result *VisionResult) []string {
	haystack := strings.ToLower(result.Caption + " " + strings.Join(result.Tags, " "))
	var suggestions []string
	for _, entry := range repairSuggestions {
		if strings.Contains(haystack, entry.keyword) {
			suggestions = append(suggestions, entry.suggestion)
		}
	}
	return suggestions
}
