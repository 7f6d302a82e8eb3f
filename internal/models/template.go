package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// FieldDef описывает одно типизированное поле шаблона документа.
type FieldDef struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Type         string `json:"type"`
	Required     bool   `json:"required"`
	Placeholder  string `json:"placeholder,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
}

// FieldDefs хранит упорядоченный список полей шаблона в JSONB-колонке.
type FieldDefs []FieldDef

// Value сериализует список полей в JSON для сохранения в БД.
func (f FieldDefs) Value() (driver.Value, error) {
	if f == nil {
		return json.Marshal([]FieldDef{})
	}
	return json.Marshal(f)
}

// Scan читает JSON из БД и заполняет список полей.
func (f *FieldDefs) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("field defs: ожидался []byte")
	}
	return json.Unmarshal(bytes, f)
}

// StringSlice хранит список строк (теги шаблона) в JSONB-колонке.
type StringSlice []string

// Value сериализует список строк в JSON.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(s)
}

// Scan читает JSON из БД и заполняет список строк.
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("string slice: ожидался []byte")
	}
	return json.Unmarshal(bytes, s)
}

// Template описывает шаблон документа (предложение, счёт, контракт, презентация).
// Content хранит сырой текст с {{placeholder}} для старых шаблонов;
// новые шаблоны описываются упорядоченным списком Variables.
type Template struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Type        string          `db:"type" json:"type"`
	Description *string         `db:"description" json:"description,omitempty"`
	Content     *string         `db:"content" json:"content,omitempty"`
	Variables   FieldDefs       `db:"variables" json:"variables"`
	IsSystem    bool            `db:"is_system" json:"is_system"`
	IsPublic    bool            `db:"is_public" json:"is_public"`
	Tags        StringSlice     `db:"tags" json:"tags,omitempty"`
	Metadata    json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedByID uuid.UUID       `db:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
