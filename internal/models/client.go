package models

import (
	"time"

	"github.com/google/uuid"
)

// Client описывает клиента компании (CRM-карточка).
type Client struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	CompanyName *string   `db:"company_name" json:"company_name,omitempty"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedByID uuid.UUID `db:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Project описывает проект, к которому привязываются задачи и документы.
type Project struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	ClientID    *uuid.UUID `db:"client_id" json:"client_id,omitempty"`
	Status      string     `db:"status" json:"status"`
	CreatedByID uuid.UUID  `db:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
