package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

var ErrInvalidPayload = core.NewError(core.KindBadRequest, "invalid JSON payload")

// Sale is the normalized record of one webhook call. It is never mutated once stored.
type Sale struct {
	ID            int64           `db:"id" json:"id"`
	Event         null.String     `db:"event" json:"event"`
	Status        null.String     `db:"status" json:"status"`
	CustomerName  null.String     `db:"customer_name" json:"customer_name"`
	CustomerEmail null.String     `db:"customer_email" json:"customer_email"`
	Amount        null.Float64    `db:"amount" json:"amount"`
	Currency      null.String     `db:"currency" json:"currency"`
	ProductName   null.String     `db:"product_name" json:"product_name"`
	TransactionID null.String     `db:"transaction_id" json:"transaction_id"`
	Raw           json.RawMessage `db:"raw_payload" json:"raw_payload"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type Repository interface {
	CreateSale(ctx context.Context, sale Sale) (Sale, error)
}

// Normalize decodes raw and applies FieldRules. Only undecodable JSON is an error;
// fields without a matching rule stay null.
func Normalize(raw []byte) (Sale, error) {
	var payload interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return Sale{}, core.NewError(core.KindBadRequest, ErrInvalidPayload.Message, err)
	}
	if dec.More() {
		return Sale{}, ErrInvalidPayload
	}

	str := func(field string) null.String {
		if s, ok := FirstString(FieldRules[field], payload); ok {
			return null.StringFrom(s)
		}
		return null.String{}
	}

	sale := Sale{
		Event:         str(FieldEvent),
		Status:        str(FieldStatus),
		CustomerName:  str(FieldCustomerName),
		CustomerEmail: str(FieldCustomerEmail),
		Currency:      str(FieldCurrency),
		ProductName:   str(FieldProductName),
		TransactionID: str(FieldTransactionID),
		Raw:           json.RawMessage(bytes.TrimSpace(raw)),
	}
	if f, ok := FirstFloat(FieldRules[FieldAmount], payload); ok {
		sale.Amount = null.Float64From(f)
	}
	return sale, nil
}

type Service struct {
	repo   Repository
	logger core.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ingest normalizes and stores one webhook payload.
func (svc *Service) Ingest(ctx context.Context, raw []byte) (Sale, error) {
	sale, err := Normalize(raw)
	if err != nil {
		return Sale{}, err
	}
	sale.CreatedAt = svc.now()

	sale, err = svc.repo.CreateSale(ctx, sale)
	if err != nil {
		return Sale{}, errors.Wrap(err, "creating sale")
	}
	svc.logger.Info(fmt.Sprintf(
		"sale %d stored: event=%s status=%s transaction=%s",
		sale.ID, sale.Event.String, sale.Status.String, sale.TransactionID.String,
	))
	return sale, nil
}
