package entity

import "time"

// LegacySale mirrors a row of the pre-existing pos_sales table. The legacy
// schema stores amounts in major currency units (a DECIMAL column), which is
// why Amount is a float here and nowhere else in the subsystem. Refund
// tracking records are stored as negative amounts.
type LegacySale struct {
	ID uint64

	OrderID       string
	Amount        float64
	PaymentMethod string
	TransactionID string

	CashReceived *float64
	ChangeGiven  *float64

	Metadata map[string]string

	CreatedAt time.Time
}
