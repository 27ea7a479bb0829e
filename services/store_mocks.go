package services

import (
	"context"
	"sort"
	"sync"

	"github.com/fixup-labs/fixup-api/models"
)

// In-memory store implementations used by handler tests. They mirror the
// DynamoDB adapters' behavior, including last-write-wins on whole-document
// puts and ErrNotFound on missing keys.

// MockProfileStore is an in-memory ProfileStore for testing
type MockProfileStore struct {
	users         map[string]models.User
	professionals map[string]models.Professional
	mu            sync.RWMutex
}

// NewMockProfileStore creates a new mock profile store
func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{
		users:         make(map[string]models.User),
		professionals: make(map[string]models.Professional),
	}
}

// SetAsMockForTesting sets this mock as the global profile store instance
func (m *MockProfileStore) SetAsMockForTesting() {
	SetProfileStore(m)
}

func (m *MockProfileStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *MockProfileStore) PutUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return nil
}

func (m *MockProfileStore) GetProfessional(ctx context.Context, id string) (*models.Professional, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pro, ok := m.professionals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &pro, nil
}

func (m *MockProfileStore) PutProfessional(ctx context.Context, pro *models.Professional) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.professionals[pro.ID] = *pro
	return nil
}

func (m *MockProfileStore) ListProfessionalsByCategory(ctx context.Context, category string, limit int) ([]models.Professional, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pros []models.Professional
	for _, pro := range m.professionals {
		if pro.ServiceCategory == category {
			pros = append(pros, pro)
		}
	}
	sort.Slice(pros, func(i, j int) bool { return pros[i].ID < pros[j].ID })
	if limit > 0 && len(pros) > limit {
		pros = pros[:limit]
	}
	return pros, nil
}

// MockJobStore is an in-memory JobStore for testing
type MockJobStore struct {
	jobs map[string]models.Job
	mu   sync.RWMutex
}

// NewMockJobStore creates a new mock job store
func NewMockJobStore() *MockJobStore {
	return &MockJobStore{jobs: make(map[string]models.Job)}
}

// SetAsMockForTesting sets this mock as the global job store instance
func (m *MockJobStore) SetAsMockForTesting() {
	SetJobStore(m)
}

func (m *MockJobStore) CreateJob(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *MockJobStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

func (m *MockJobStore) PutJob(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *MockJobStore) ListJobsByUser(ctx context.Context, userID string) ([]models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var jobs []models.Job
	for _, job := range m.jobs {
		if job.UserID == userID {
			jobs = append(jobs, job)
		}
	}
	sortJobsByRecency(jobs)
	return jobs, nil
}

func (m *MockJobStore) ListOpenJobs(ctx context.Context, limit int) ([]models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var jobs []models.Job
	for _, job := range m.jobs {
		if job.Status == models.JobStatusOpen {
			jobs = append(jobs, job)
		}
	}
	sortJobsByRecency(jobs)
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (m *MockJobStore) ListJobsQuotedBy(ctx context.Context, professionalID string) ([]models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var jobs []models.Job
	for _, job := range m.jobs {
		if job.QuoteByProfessional(professionalID) != nil {
			jobs = append(jobs, job)
		}
	}
	sortJobsByRecency(jobs)
	return jobs, nil
}

func sortJobsByRecency(jobs []models.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}

// MockConversationStore is an in-memory ConversationStore for testing
type MockConversationStore struct {
	conversations map[string]models.Conversation // keyed by userID + "/" + id
	mu            sync.RWMutex
}

// NewMockConversationStore creates a new mock conversation store
func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{conversations: make(map[string]models.Conversation)}
}

// SetAsMockForTesting sets this mock as the global conversation store instance
func (m *MockConversationStore) SetAsMockForTesting() {
	SetConversationStore(m)
}

func (m *MockConversationStore) GetConversation(ctx context.Context, userID, id string) (*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.conversations[userID+"/"+id]
	if !ok {
		return nil, ErrNotFound
	}
	return &conv, nil
}

func (m *MockConversationStore) PutConversation(ctx context.Context, conv *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[conv.UserID+"/"+conv.ID] = *conv
	return nil
}

func (m *MockConversationStore) ListConversations(ctx context.Context, userID string, limit int, continuationToken string) (*ConversationPage, error) {
	if limit <= 0 || limit > MaxConversationPageSize {
		limit = MaxConversationPageSize
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var convs []models.Conversation
	for _, conv := range m.conversations {
		if conv.UserID == userID {
			convs = append(convs, conv)
		}
	}
	// Newest first, id as tiebreaker so paging is stable
	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].UpdatedAt.Equal(convs[j].UpdatedAt) {
			return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
		}
		return convs[i].ID < convs[j].ID
	})

	start := 0
	if continuationToken != "" {
		for i, conv := range convs {
			if conv.ID == continuationToken {
				start = i + 1
				break
			}
		}
	}

	page := &ConversationPage{}
	end := start + limit
	if end < len(convs) {
		page.ContinuationToken = convs[end-1].ID
	} else {
		end = len(convs)
	}
	page.Conversations = convs[start:end]
	return page, nil
}

// MockProductStore is an in-memory ProductStore for testing
type MockProductStore struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductStore creates a new mock product store
func NewMockProductStore() *MockProductStore {
	return &MockProductStore{products: make(map[string]models.Product)}
}

// SetAsMockForTesting sets this mock as the global product store instance
func (m *MockProductStore) SetAsMockForTesting() {
	SetProductStore(m)
}

// AddProduct seeds a product document (for testing assertions)
func (m *MockProductStore) AddProduct(product models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
}

func (m *MockProductStore) GetProducts(ctx context.Context, ids []string) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var products []models.Product
	for _, id := range ids {
		if product, ok := m.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}
