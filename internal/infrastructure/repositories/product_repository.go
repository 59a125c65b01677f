package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/authwebsvc/domain"
)

// ProductRepositoryImpl implements domain.ProductRepository using GORM
type ProductRepositoryImpl struct {
	db *gorm.DB
}

// DBProduct represents the database model for Product. Deletion is a flag,
// never a row removal.
type DBProduct struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255"`
	Description string
	Price       float64
	Deleted     bool      `gorm:"index;default:false"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (DBProduct) TableName() string {
	return "products"
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &ProductRepositoryImpl{db: db}
}

// Create implements domain.ProductRepository
func (r *ProductRepositoryImpl) Create(ctx context.Context, product *domain.Product) error {
	dbProduct := &DBProduct{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
	}
	if err := r.db.WithContext(ctx).Create(dbProduct).Error; err != nil {
		return err
	}
	product.ID = dbProduct.ID
	product.CreatedAt = dbProduct.CreatedAt
	return nil
}

// FindByID implements domain.ProductRepository
func (r *ProductRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var dbProduct DBProduct
	err := r.db.WithContext(ctx).Where("id = ? AND deleted = ?", id, false).First(&dbProduct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, err
	}
	return dbToProduct(&dbProduct), nil
}

// List implements domain.ProductRepository
func (r *ProductRepositoryImpl) List(ctx context.Context) ([]domain.Product, error) {
	var dbProducts []DBProduct
	err := r.db.WithContext(ctx).
		Where("deleted = ?", false).
		Order("created_at DESC").
		Find(&dbProducts).Error
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(dbProducts))
	for i := range dbProducts {
		products = append(products, *dbToProduct(&dbProducts[i]))
	}
	return products, nil
}

// Update implements domain.ProductRepository
func (r *ProductRepositoryImpl) Update(ctx context.Context, product *domain.Product) error {
	res := r.db.WithContext(ctx).Model(&DBProduct{}).
		Where("id = ? AND deleted = ?", product.ID, false).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

// Delete implements domain.ProductRepository as a soft delete
func (r *ProductRepositoryImpl) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&DBProduct{}).
		Where("id = ? AND deleted = ?", id, false).
		Update("deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func dbToProduct(dbProduct *DBProduct) *domain.Product {
	return &domain.Product{
		ID:          dbProduct.ID,
		Name:        dbProduct.Name,
		Description: dbProduct.Description,
		Price:       dbProduct.Price,
		Deleted:     dbProduct.Deleted,
		CreatedAt:   dbProduct.CreatedAt,
		UpdatedAt:   dbProduct.UpdatedAt,
	}
}
