package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ValuesMap хранит значения полей шаблона в JSONB-колонке.
type ValuesMap map[string]interface{}

// Value сериализует значения в JSON для сохранения в БД.
func (m ValuesMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(map[string]interface{}{})
	}
	return json.Marshal(m)
}

// Scan читает JSON из БД и заполняет значения.
func (m *ValuesMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("values map: ожидался []byte")
	}
	return json.Unmarshal(bytes, m)
}

// Proposal описывает коммерческое предложение клиенту.
// ShareableLink выдаётся ровно один раз при первой отправке и больше не меняется.
// ParentProposalID ссылается на оригинал, от которого создана ревизия;
// цепочка ревизий append-only: указатель на родителя после создания не мутируется.
type Proposal struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	TemplateID       *uuid.UUID `db:"template_id" json:"template_id,omitempty"`
	ProjectID        *uuid.UUID `db:"project_id" json:"project_id,omitempty"`
	ClientID         *uuid.UUID `db:"client_id" json:"client_id,omitempty"`
	ClientName       string     `db:"client_name" json:"client_name"`
	ClientEmail      string     `db:"client_email" json:"client_email"`
	Content          string     `db:"content" json:"content"`
	Variables        ValuesMap  `db:"variables" json:"variables,omitempty"`
	Status           string     `db:"status" json:"status"`
	ShareableLink    *string    `db:"shareable_link" json:"shareable_link,omitempty"`
	SentAt           *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	ViewedAt         *time.Time `db:"viewed_at" json:"viewed_at,omitempty"`
	RespondedAt      *time.Time `db:"responded_at" json:"responded_at,omitempty"`
	AcceptedAt       *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	ExpiresAt        time.Time  `db:"expires_at" json:"expires_at"`
	ResponseMessage  *string    `db:"response_message" json:"response_message,omitempty"`
	Version          int        `db:"version" json:"version"`
	ParentProposalID *uuid.UUID `db:"parent_proposal_id" json:"parent_proposal_id,omitempty"`
	RevisionNotes    *string    `db:"revision_notes" json:"revision_notes,omitempty"`
	CreatedByID      uuid.UUID  `db:"created_by_id" json:"created_by_id"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// IsTerminal сообщает, находится ли предложение в конечном статусе.
func (p *Proposal) IsTerminal() bool {
	switch p.Status {
	case ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusRevisionRequested:
		return true
	}
	return false
}

// IsExpired сообщает, истёк ли срок действия предложения на момент now.
func (p *Proposal) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
