package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification хранит внутрисистемное уведомление пользователя.
// Payload содержит событие и произвольные данные в JSON.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// DispatchResult описывает итог доставки по одному каналу.
// Ошибка доставки никогда не прерывает основную операцию,
// но вызывающий код и тесты могут детерминированно проверить итог.
type DispatchResult struct {
	Channel   string `json:"channel"`
	Delivered bool   `json:"delivered"`
	Err       error  `json:"-"`
}
