package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SwayEquilibrium/pos-payments/app/entity"
)

var ErrSaleAlreadyExists = errors.New("legacy sale already exists")

// LegacySaleRepository is the unmodified persistence path of the old POS
// payment flow: one row per recorded sale in the pos_sales table. The
// bridge provider is its only caller in this service.
type LegacySaleRepository struct {
	db DBTX
}

func NewLegacySaleRepository(db DBTX) *LegacySaleRepository {
	return &LegacySaleRepository{db: db}
}

func (r *LegacySaleRepository) Create(ctx context.Context, sale *entity.LegacySale) error {
	metadataJSON, err := serializeMetadata(sale.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pos_sales (
			order_id, amount, payment_method, transaction_id,
			cash_received, change_given, metadata_json, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		sale.OrderID,
		sale.Amount,
		sale.PaymentMethod,
		sale.TransactionID,
		nullableFloat64Value(sale.CashReceived),
		nullableFloat64Value(sale.ChangeGiven),
		metadataJSON,
		sale.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrSaleAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	sale.ID = uint64(id)
	return nil
}

func (r *LegacySaleRepository) FindByTransactionID(ctx context.Context, transactionID string) (*entity.LegacySale, error) {
	query := `
		SELECT id, order_id, amount, payment_method, transaction_id,
			cash_received, change_given, metadata_json, created_at
		FROM pos_sales
		WHERE transaction_id = ?
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, transactionID)

	var sale entity.LegacySale
	var cashReceived sql.NullFloat64
	var changeGiven sql.NullFloat64
	var metadataJSON string

	err := row.Scan(
		&sale.ID,
		&sale.OrderID,
		&sale.Amount,
		&sale.PaymentMethod,
		&sale.TransactionID,
		&cashReceived,
		&changeGiven,
		&metadataJSON,
		&sale.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sale.CashReceived = float64PtrFromNull(cashReceived)
	sale.ChangeGiven = float64PtrFromNull(changeGiven)
	sale.Metadata, err = parseMetadata(metadataJSON)
	if err != nil {
		return nil, err
	}

	return &sale, nil
}
