package models

import (
	"strings"
	"time"
)

// Professional verification statuses
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// MaxServiceAreas bounds the service area list on a professional profile
const MaxServiceAreas = 20

// Professional represents a tradesperson profile. It shares its ID with the
// User document for the same subject but lives in its own collection.
type Professional struct {
	ID                 string    `json:"id" dynamodbav:"id"`
	BusinessName       string    `json:"business_name" dynamodbav:"business_name"`
	State              string    `json:"state" dynamodbav:"state"`
	ServiceAreas       []string  `json:"service_areas" dynamodbav:"service_areas"`
	ServiceCategory    string    `json:"service_category" dynamodbav:"service_category"`
	LicenseNumber      string    `json:"license_number,omitempty" dynamodbav:"license_number,omitempty"`
	InsuranceProvider  string    `json:"insurance_provider,omitempty" dynamodbav:"insurance_provider,omitempty"`
	YearsExperience    int       `json:"years_experience" dynamodbav:"years_experience"`
	VerificationStatus string    `json:"verification_status" dynamodbav:"verification_status"`
	CreatedAt          time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// ServesArea reports whether the professional covers the given area.
// Matching is case-insensitive on the stored area names.
func (p *Professional) ServesArea(area string) bool {
	if area == "" {
		return true
	}
	for _, a := range p.ServiceAreas {
		if strings.EqualFold(a, area) {
			return true
		}
	}
	return false
}
