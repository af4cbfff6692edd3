package entity

import "time"

const (
	ProductDraft     = "draft"
	ProductPublished = "published"
	ProductArchived  = "archived"
)

type ProductImage struct {
	ID           string `json:"id" firestore:"id"`
	URL          string `json:"url" firestore:"url"`
	DisplayOrder int    `json:"display_order" firestore:"displayOrder"`
}

type Product struct {
	ID          string         `json:"id" firestore:"id"`
	SellerID    string         `json:"seller_id" firestore:"sellerId"`
	Title       string         `json:"title" firestore:"title"`
	Description string         `json:"description" firestore:"description"`
	Price       float64        `json:"price" firestore:"price"`
	Stock       int            `json:"stock" firestore:"stock"`
	Status      string         `json:"status" firestore:"status"`
	Images      []ProductImage `json:"images" firestore:"images"`
	Views       int            `json:"views" firestore:"views"`
	Featured    bool           `json:"featured" firestore:"featured"`
	CreatedAt   time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time      `json:"updated_at" firestore:"updatedAt"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty" firestore:"deletedAt,omitempty"`
}
