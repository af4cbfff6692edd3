package usecase

import (
	"context"

	"lapakku/internal/domain/entity"
	"lapakku/internal/domain/repository"
	"lapakku/pkg/errors"
)

type ProductUseCase struct {
	productRepo repository.ProductRepository
}

func NewProductUseCase(productRepo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo}
}

type CreateProductInput struct {
	Title       string
	Description string
	Price       float64
	Stock       int
	Images      []entity.ProductImage
}

func (uc *ProductUseCase) Create(ctx context.Context, sellerID string, input CreateProductInput) (*entity.Product, error) {
	product := &entity.Product{
		SellerID:    sellerID,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Status:      entity.ProductPublished,
		Images:      input.Images,
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return uc.productRepo.GetByID(ctx, id)
}

type UpdateProductInput struct {
	Title       string
	Description string
	Price       float64
	Stock       *int
	Status      string
}

func (uc *ProductUseCase) Update(ctx context.Context, sellerID, id string, input UpdateProductInput) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.SellerID != sellerID {
		return nil, errors.Forbidden("You can only update your own products", nil)
	}

	if input.Title != "" {
		product.Title = input.Title
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	if input.Price > 0 {
		product.Price = input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Status != "" {
		product.Status = input.Status
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (uc *ProductUseCase) Delete(ctx context.Context, sellerID, id string) error {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if product.SellerID != sellerID {
		return errors.Forbidden("You can only delete your own products", nil)
	}

	return uc.productRepo.Delete(ctx, id)
}

func (uc *ProductUseCase) List(ctx context.Context, status string, limit, offset int) ([]*entity.Product, int64, error) {
	return uc.productRepo.List(ctx, status, limit, offset)
}
