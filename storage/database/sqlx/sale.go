package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/payment"
)

type saleRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*saleRepository)(nil) // interface compliance check

func NewSaleRepository(db *sqlx.DB) *saleRepository {
	return &saleRepository{db: db}
}

func (repo saleRepository) CreateSale(ctx context.Context, sale payment.Sale) (payment.Sale, error) {
	var out payment.Sale
	// raw_payload goes as text: lib/pq would send []byte as bytea
	err := repo.db.GetContext(ctx, &out, `
		INSERT INTO sales (
			event, status, customer_name, customer_email, amount,
			currency, product_name, transaction_id, raw_payload, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10)
		RETURNING id, event, status, customer_name, customer_email, amount,
			currency, product_name, transaction_id, raw_payload, created_at`,
		sale.Event, sale.Status, sale.CustomerName, sale.CustomerEmail, sale.Amount,
		sale.Currency, sale.ProductName, sale.TransactionID, string(sale.Raw), sale.CreatedAt.UTC(),
	)
	return out, errors.Wrap(err, "inserting sale")
}
