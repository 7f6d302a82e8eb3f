package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract описывает контракт с цепочкой сбора подписей.
// Позиции редактируются только в статусе draft, как и у счетов.
type Contract struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ContractNumber string     `db:"contract_number" json:"contract_number"`
	Title          string     `db:"title" json:"title"`
	ClientID       uuid.UUID  `db:"client_id" json:"client_id"`
	ProjectID      *uuid.UUID `db:"project_id" json:"project_id,omitempty"`
	Content        string     `db:"content" json:"content"`
	LineItems      LineItems  `db:"line_items" json:"line_items,omitempty"`
	TotalAmount    float64    `db:"total_amount" json:"total_amount"`
	Status         string     `db:"status" json:"status"`
	SentAt         *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	SignedAt       *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	ExecutedAt     *time.Time `db:"executed_at" json:"executed_at,omitempty"`
	ExpirationDate *time.Time `db:"expiration_date" json:"expiration_date,omitempty"`
	CreatedByID    uuid.UUID  `db:"created_by_id" json:"created_by_id"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// NeedsAttention сообщает, требует ли контракт внимания менеджера:
// подписанный или исполненный контракт, срок которого истекает в ближайшие 30 дней,
// либо контракт в любом статусе ожидания подписи.
func (c *Contract) NeedsAttention(now time.Time) bool {
	for _, s := range ContractPendingSignatureStatuses {
		if c.Status == s {
			return true
		}
	}
	if c.ExpirationDate == nil {
		return false
	}
	if c.Status != ContractStatusFullySigned && c.Status != ContractStatusExecuted {
		return false
	}
	return c.ExpirationDate.After(now) && c.ExpirationDate.Before(now.Add(30*24*time.Hour))
}
