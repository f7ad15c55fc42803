package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kovlou/storefront/internal/domain"
)

// opTimeout ограничивает каждую операцию репозитория.
const opTimeout = 5 * time.Second

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) Create(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, name, brand, category, subcategory, price_minor, stock, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		product.ID, product.Name, product.Brand, product.Category, product.Subcategory,
		product.PriceMinor, product.Stock, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProductAlreadyExists
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r *productRepository) Get(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, brand, category, subcategory, price_minor, stock, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(
		&product.ID, &product.Name, &product.Brand, &product.Category, &product.Subcategory,
		&product.PriceMinor, &product.Stock, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

// DecrementStock выполняет условный декремент одним UPDATE: проверка остатка
// и списание происходят в одном атомарном выражении, поэтому конкурирующие
// оформления не могут увести остаток в минус.
func (r *productRepository) DecrementStock(id string, qty int32) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND stock >= $2
		RETURNING id, name, brand, category, subcategory, price_minor, stock, created_at, updated_at
	`, id, qty).Scan(
		&product.ID, &product.Name, &product.Brand, &product.Category, &product.Subcategory,
		&product.PriceMinor, &product.Stock, &product.CreatedAt, &product.UpdatedAt,
	)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("decrement stock: %w", err)
	}

	// Ноль затронутых строк: либо товара нет, либо остатка не хватает.
	current, getErr := r.Get(id)
	if getErr != nil {
		return domain.Product{}, getErr
	}
	return current, domain.ErrInsufficientStock
}

// Restock атомарно увеличивает остаток на qty.
func (r *productRepository) Restock(id string, qty int32) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock + $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, brand, category, subcategory, price_minor, stock, created_at, updated_at
	`, id, qty).Scan(
		&product.ID, &product.Name, &product.Brand, &product.Category, &product.Subcategory,
		&product.PriceMinor, &product.Stock, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("restock product: %w", err)
	}

	return product, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
