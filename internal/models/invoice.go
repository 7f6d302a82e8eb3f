package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// LineItem описывает одну позицию счёта или контракта.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// LineItems хранит упорядоченный список позиций в JSONB-колонке.
type LineItems []LineItem

// Value сериализует позиции в JSON для сохранения в БД.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]LineItem{})
	}
	return json.Marshal(l)
}

// Scan читает JSON из БД и заполняет позиции.
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("line items: ожидался []byte")
	}
	return json.Unmarshal(bytes, l)
}

// Invoice описывает счёт клиенту.
// Инварианты: TotalAmount = Subtotal + TaxAmount - DiscountAmount,
// BalanceDue = TotalAmount - AmountPaid. Позиции редактируются только в статусе draft.
type Invoice struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	InvoiceNumber  string     `db:"invoice_number" json:"invoice_number"`
	ClientID       uuid.UUID  `db:"client_id" json:"client_id"`
	ProjectID      *uuid.UUID `db:"project_id" json:"project_id,omitempty"`
	LineItems      LineItems  `db:"line_items" json:"line_items"`
	Subtotal       float64    `db:"subtotal" json:"subtotal"`
	TaxRate        float64    `db:"tax_rate" json:"tax_rate"`
	TaxAmount      float64    `db:"tax_amount" json:"tax_amount"`
	DiscountAmount float64    `db:"discount_amount" json:"discount_amount"`
	TotalAmount    float64    `db:"total_amount" json:"total_amount"`
	AmountPaid     float64    `db:"amount_paid" json:"amount_paid"`
	BalanceDue     float64    `db:"balance_due" json:"balance_due"`
	Status         string     `db:"status" json:"status"`
	DueDate        time.Time  `db:"due_date" json:"due_date"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	PaidAt         *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	SentAt         *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedByID    uuid.UUID  `db:"created_by_id" json:"created_by_id"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Recalculate пересчитывает суммы счёта из позиций с округлением до копеек.
// Amount каждой позиции выводится из Quantity*Rate, а не берётся из запроса.
func (inv *Invoice) Recalculate() {
	subtotal := 0.0
	for i := range inv.LineItems {
		inv.LineItems[i].Amount = Round2(inv.LineItems[i].Quantity * inv.LineItems[i].Rate)
		subtotal += inv.LineItems[i].Amount
	}
	inv.Subtotal = Round2(subtotal)
	inv.TaxAmount = Round2(inv.Subtotal * inv.TaxRate / 100)
	inv.TotalAmount = Round2(inv.Subtotal + inv.TaxAmount - inv.DiscountAmount)
	inv.BalanceDue = Round2(inv.TotalAmount - inv.AmountPaid)
}

// Round2 округляет денежную сумму до двух знаков.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Payment описывает платёж по счёту. Создание платежа меняет
// AmountPaid/BalanceDue/Status связанного счёта в одной транзакции.
type Payment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	InvoiceID   *uuid.UUID `db:"invoice_id" json:"invoice_id,omitempty"`
	ClientID    uuid.UUID  `db:"client_id" json:"client_id"`
	Amount      float64    `db:"amount" json:"amount"`
	PaymentDate time.Time  `db:"payment_date" json:"payment_date"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CreatedByID uuid.UUID  `db:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
