package repository

import (
	"context"
	"sort"

	"go-inventory-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository methods that take a tx run inside the caller's
// transaction; a nil tx uses the connection pool.
type ProductRepository interface {
	DB() *gorm.DB
	Create(ctx context.Context, tx *gorm.DB, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, tx *gorm.DB, barcode string) (*model.Product, error)
	LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error)
	SwapQuantities(ctx context.Context, tx *gorm.DB, product *model.Product, stock, shop int, updatedBy string) error
	SwapDetails(ctx context.Context, tx *gorm.DB, product *model.Product, updatedBy string) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) DB() *gorm.DB {
	return r.db
}

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, product *model.Product) error {
	product.Version = 1
	return conn(ctx, r.db, tx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(ctx context.Context, tx *gorm.DB, barcode string) (*model.Product, error) {
	var product model.Product
	if err := conn(ctx, r.db, tx).First(&product, "barcode = ?", barcode).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockByIDs reads the given products in ascending id order. On postgres the
// rows are locked FOR UPDATE until tx ends; the fixed order keeps two batches
// touching the same products from deadlocking. Missing ids are simply absent
// from the result.
func (r *productRepo) LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	q := conn(ctx, r.db, tx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var products []model.Product
	err := q.Where("id IN ?", sorted).Order("id ASC").Find(&products).Error
	return products, err
}

// SwapQuantities writes both pools if the row still carries product.Version
// and bumps the version. On success product reflects the stored row.
func (r *productRepo) SwapQuantities(ctx context.Context, tx *gorm.DB, product *model.Product, stock, shop int, updatedBy string) error {
	res := conn(ctx, r.db, tx).Model(&model.Product{}).
		Where("id = ? AND version = ?", product.ID, product.Version).
		Updates(map[string]interface{}{
			"stock_quantity": stock,
			"shop_quantity":  shop,
			"version":        product.Version + 1,
			"updated_by":     updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	product.StockQuantity = stock
	product.ShopQuantity = shop
	product.Version++
	product.UpdatedBy = updatedBy
	return nil
}

// SwapDetails writes every editable column of product under the same
// version check as SwapQuantities.
func (r *productRepo) SwapDetails(ctx context.Context, tx *gorm.DB, product *model.Product, updatedBy string) error {
	res := conn(ctx, r.db, tx).Model(&model.Product{}).
		Where("id = ? AND version = ?", product.ID, product.Version).
		Updates(map[string]interface{}{
			"name":           product.Name,
			"brand":          product.Brand,
			"category":       product.Category,
			"price":          product.Price,
			"stock_quantity": product.StockQuantity,
			"shop_quantity":  product.ShopQuantity,
			"barcode":        product.Barcode,
			"image_url":      product.ImageURL,
			"expiry_date":    product.ExpiryDate,
			"version":        product.Version + 1,
			"updated_by":     updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	product.Version++
	product.UpdatedBy = updatedBy
	return nil
}

// Delete removes the row for good; the audit log keeps the history.
func (r *productRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := conn(ctx, r.db, tx).Unscoped().Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
