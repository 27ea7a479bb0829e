package services

import (
	"context"

	"github.com/fixup-labs/fixup-api/models"
)

// MockAssistantService is a canned-reply AssistantService for testing
type MockAssistantService struct {
	Reply string
	Err   error

	// LastHistory records the window passed to the most recent call
	LastHistory []models.Message
}

// NewMockAssistantService creates a mock assistant returning the given reply
func NewMockAssistantService(reply string) *MockAssistantService {
	return &MockAssistantService{Reply: reply}
}

// SetAsMockForTesting sets this mock as the global assistant instance
func (m *MockAssistantService) SetAsMockForTesting() {
	SetAssistantService(m)
}

func (m *MockAssistantService) Advise(ctx context.Context, history []models.Message) (string, error) {
	m.LastHistory = history
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// MockVisionService is a canned-result VisionService for testing
type MockVisionService struct {
	Result *VisionResult
	Err    error

	// LastImage records the payload passed to the most recent call
	LastImage []byte
}

// NewMockVisionService creates a mock vision service returning the given result
func NewMockVisionService(result *VisionResult) *MockVisionService {
	return &MockVisionService{Result: result}
}

// SetAsMockForTesting sets this mock as the global vision instance
func (m *MockVisionService) SetAsMockForTesting() {
	SetVisionService(m)
}

func (m *MockVisionService) Analyze(ctx context.Context, image []byte) (*VisionResult, error) {
	m.LastImage = image
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}
