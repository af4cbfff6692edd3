package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lapakku/internal/domain/entity"
	"lapakku/internal/domain/repository"
	"lapakku/pkg/errors"
	"lapakku/pkg/logger"
)

type firestoreProductRepository struct {
	client *firestore.Client
}

func NewFirestoreProductRepository(client *firestore.Client) repository.ProductRepository {
	return &firestoreProductRepository{
		client: client,
	}
}

func (r *firestoreProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.client.Collection("products").Doc(product.ID).Set(ctx, product)
	if err != nil {
		return errors.Internal("Failed to create product", err)
	}

	return nil
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	doc, err := r.client.Collection("products").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Product", err)
		}
		return nil, errors.Internal("Failed to get product", err)
	}

	var product entity.Product
	if err := doc.DataTo(&product); err != nil {
		return nil, errors.Internal("Failed to parse product data", err)
	}

	if product.DeletedAt != nil {
		return nil, errors.NotFound("Product", nil)
	}

	return &product, nil
}

func (r *firestoreProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()

	_, err := r.client.Collection("products").Doc(product.ID).Set(ctx, product)
	if err != nil {
		return errors.Internal("Failed to update product", err)
	}

	return nil
}

func (r *firestoreProductRepository) Delete(ctx context.Context, id string) error {
	// Soft delete keeps the document for order history references.
	now := time.Now()
	_, err := r.client.Collection("products").Doc(id).Update(ctx, []firestore.Update{
		{Path: "deletedAt", Value: now},
		{Path: "updatedAt", Value: now},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Product", err)
		}
		return errors.Internal("Failed to delete product", err)
	}

	return nil
}

func (r *firestoreProductRepository) List(ctx context.Context, statusFilter string, limit, offset int) ([]*entity.Product, int64, error) {
	query := r.client.Collection("products").OrderBy("createdAt", firestore.Desc)
	if statusFilter != "" {
		query = r.client.Collection("products").
			Where("status", "==", statusFilter).
			OrderBy("createdAt", firestore.Desc)
	}

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while listing products: %v", err)
		return nil, 0, errors.Internal("Failed to list products", err)
	}

	var products []*entity.Product
	for _, doc := range allDocs {
		var product entity.Product
		if err := doc.DataTo(&product); err != nil {
			logger.Warn("Skipping malformed product document %s: %v", doc.Ref.ID, err)
			continue
		}
		if product.DeletedAt != nil {
			continue
		}
		products = append(products, &product)
	}

	total := int64(len(products))

	start := offset
	if start > len(products) {
		start = len(products)
	}
	end := len(products)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return products[start:end], total, nil
}
