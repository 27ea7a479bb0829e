package models

import "time"

// Job statuses
const (
	JobStatusOpen      = "open"
	JobStatusScheduled = "scheduled"
)

// Quote statuses
const (
	QuoteStatusPending  = "pending"
	QuoteStatusAccepted = "accepted"
	QuoteStatusDeclined = "declined"
)

// MaxJobDescriptionLength is the cap applied to job descriptions after trimming
const MaxJobDescriptionLength = 4000

// Job represents a homeowner's posted repair request. Quotes are embedded in
// the job document rather than stored independently, so a job write always
// carries its full quote list (last write wins on concurrent updates).
type Job struct {
	ID            string    `json:"id" dynamodbav:"id"`
	UserID        string    `json:"user_id" dynamodbav:"user_id"`
	Title         string    `json:"title,omitempty" dynamodbav:"title,omitempty"`
	Description   string    `json:"description" dynamodbav:"description"`
	Summary       string    `json:"summary,omitempty" dynamodbav:"summary,omitempty"`
	BudgetMin     float64   `json:"budget_min,omitempty" dynamodbav:"budget_min,omitempty"`
	BudgetMax     float64   `json:"budget_max,omitempty" dynamodbav:"budget_max,omitempty"`
	Location      string    `json:"location,omitempty" dynamodbav:"location,omitempty"`
	Products      []string  `json:"products,omitempty" dynamodbav:"products,omitempty"`
	Status        string    `json:"status" dynamodbav:"status"`
	Quotes        []Quote   `json:"quotes" dynamodbav:"quotes"`
	QuotedBy      []string  `json:"-" dynamodbav:"quoted_by,omitempty"`
	ScheduledSlot string    `json:"scheduled_slot,omitempty" dynamodbav:"scheduled_slot,omitempty"`
	CreatedAt     time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// Quote represents a professional's priced offer against a job.
type Quote struct {
	ID             string    `json:"id" dynamodbav:"id"`
	ProfessionalID string    `json:"professional_id" dynamodbav:"professional_id"`
	PriceMin       float64   `json:"price_min" dynamodbav:"price_min"`
	PriceMax       float64   `json:"price_max" dynamodbav:"price_max"`
	Availability   string    `json:"availability,omitempty" dynamodbav:"availability,omitempty"`
	Message        string    `json:"message,omitempty" dynamodbav:"message,omitempty"`
	Status         string    `json:"status" dynamodbav:"status"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// QuoteByProfessional returns the quote submitted by the given professional,
// or nil when none exists.
func (j *Job) QuoteByProfessional(professionalID string) *Quote {
	for i := range j.Quotes {
		if j.Quotes[i].ProfessionalID == professionalID {
			return &j.Quotes[i]
		}
	}
	return nil
}

// QuoteByID returns the quote with the given id, or nil when none exists.
func (j *Job) QuoteByID(quoteID string) *Quote {
	for i := range j.Quotes {
		if j.Quotes[i].ID == quoteID {
			return &j.Quotes[i]
		}
	}
	return nil
}
