package services

import (
	"context"
	"fmt"
	"strings"

	"ventas-backend/internal/events"
	"ventas-backend/internal/models"
	"ventas-backend/internal/money"
)

type ProductService struct {
	Products ProductStore
	Sales    ProductSalesFetcher
	Notifier events.Notifier
}

func NewProductService(products ProductStore, sales ProductSalesFetcher, notifier events.Notifier) *ProductService {
	return &ProductService{Products: products, Sales: sales, Notifier: notifier}
}

func validateProduct(req *models.ProductRequest) error {
	errs := fieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs.add("name", "el nombre es obligatorio")
	}
	if req.Price < 0 {
		errs.add("price", "el precio no puede ser negativo")
	}
	if req.Stock < 0 {
		errs.add("stock", "el stock no puede ser negativo")
	}
	return errs.err()
}

func applyProductRequest(p *models.Product, req *models.ProductRequest) {
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Price = money.Round(req.Price)
	p.Stock = req.Stock
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.ProductRequest) (models.Ack, error) {
	if err := validateProduct(req); err != nil {
		return models.Ack{}, err
	}
	p := &models.Product{IsActive: true}
	applyProductRequest(p, req)
	if err := s.Products.Create(ctx, p); err != nil {
		return models.Ack{}, fmt.Errorf("creating product: %w", err)
	}
	s.notify(ctx)
	return models.Ack{Entity: events.EntityProducts, ID: p.ID, Action: "create"}, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.Products.Get(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	if activeOnly {
		return s.Products.GetActive(ctx)
	}
	return s.Products.List(ctx)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int, req *models.ProductRequest) (models.Ack, error) {
	if err := validateProduct(req); err != nil {
		return models.Ack{}, err
	}
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return models.Ack{}, err
	}
	applyProductRequest(p, req)
	if err := s.Products.Update(ctx, p); err != nil {
		return models.Ack{}, fmt.Errorf("updating product: %w", err)
	}
	s.notify(ctx)
	return models.Ack{Entity: events.EntityProducts, ID: id, Action: "update"}, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int) (models.Ack, error) {
	if err := s.Products.Delete(ctx, id); err != nil {
		return models.Ack{}, err
	}
	s.notify(ctx)
	return models.Ack{Entity: events.EntityProducts, ID: id, Action: "delete"}, nil
}

// SalesHistory lists the sale lines that sold a product.
func (s *ProductService) SalesHistory(ctx context.Context, id int) ([]*models.ProductSale, error) {
	return s.Sales.GetSalesForProduct(ctx, id)
}

func (s *ProductService) notify(ctx context.Context) {
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, events.EntityProducts)
	}
}
