package inmemdb

import (
	"context"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/payment"
)

type saleRepository struct {
	db *DB
}

var _ payment.Repository = (*saleRepository)(nil) // interface compliance check

func NewSaleRepository(db *DB) *saleRepository {
	return &saleRepository{db: db}
}

func (repo *saleRepository) CreateSale(_ context.Context, sale payment.Sale) (payment.Sale, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.db.failure("create_sale"); err != nil {
		return payment.Sale{}, err
	}
	repo.db.saleSeq++
	sale.ID = repo.db.saleSeq
	repo.db.sales = append(repo.db.sales, sale)
	return sale, nil
}
