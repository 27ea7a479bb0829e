package models

import "time"

// Product is the full product document held in the products table.
type Product struct {
	ID          string    `json:"id" dynamodbav:"id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description" dynamodbav:"description"`
	Category    string    `json:"category" dynamodbav:"category"`
	Price       float64   `json:"price" dynamodbav:"price"`
	Retailer    string    `json:"retailer,omitempty" dynamodbav:"retailer,omitempty"`
	ImageURL    string    `json:"image_url,omitempty" dynamodbav:"image_url,omitempty"`
	ProductURL  string    `json:"product_url,omitempty" dynamodbav:"product_url,omitempty"`
	Location    string    `json:"location,omitempty" dynamodbav:"location,omitempty"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// ProductIndexEntry is the searchable row kept in the relational index.
// It carries just enough to filter and rank; the product document itself
// is fetched from the document store by id.
type ProductIndexEntry struct {
	ProductID  string  `gorm:"primaryKey" json:"product_id"`
	SearchText string  `gorm:"not null;index" json:"search_text"`
	Category   string  `gorm:"index" json:"category"`
	Price      float64 `gorm:"index" json:"price"`
	Location   string  `gorm:"index" json:"location"`
}

// TableName specifies the table name for the ProductIndexEntry model
func (ProductIndexEntry) TableName() string {
	return "product_index"
}
