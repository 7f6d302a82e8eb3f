package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// UUIDSlice хранит список UUID в JSONB-колонке.
type UUIDSlice []uuid.UUID

// Value сериализует список в JSON для сохранения в БД.
func (s UUIDSlice) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]uuid.UUID{})
	}
	return json.Marshal(s)
}

// Scan читает JSON из БД и заполняет список.
func (s *UUIDSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("uuid slice: ожидался []byte")
	}
	return json.Unmarshal(bytes, s)
}

// Task описывает задачу внутри проекта.
type Task struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	ProjectID   *uuid.UUID `db:"project_id" json:"project_id,omitempty"`
	AssigneeID  *uuid.UUID `db:"assignee_id" json:"assignee_id,omitempty"`
	Status      string     `db:"status" json:"status"`
	Priority    *string    `db:"priority" json:"priority,omitempty"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	DependsOn   UUIDSlice  `db:"depends_on" json:"depends_on,omitempty"`
	CreatedByID uuid.UUID  `db:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// TimeLog описывает запись учёта времени. Пока EndedAt не установлен,
// запись считается запущенным таймером.
type TimeLog struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	UserID          uuid.UUID  `db:"user_id" json:"user_id"`
	TaskID          *uuid.UUID `db:"task_id" json:"task_id,omitempty"`
	ProjectID       *uuid.UUID `db:"project_id" json:"project_id,omitempty"`
	Description     *string    `db:"description" json:"description,omitempty"`
	StartedAt       time.Time  `db:"started_at" json:"started_at"`
	EndedAt         *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}
