package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/logger"
	"github.com/vsuitehq/gigster-backend/internal/mailer"
	"github.com/vsuitehq/gigster-backend/internal/models"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// WSNotifier интерфейс для отправки WebSocket уведомлений.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// NotificationService содержит бизнес-логику работы с уведомлениями
// и доставку по внешним каналам (email, SMS).
type NotificationService struct {
	repo  NotificationRepository
	hub   WSNotifier
	email mailer.EmailSender
	sms   mailer.SMSSender
}

// NewNotificationService создаёт новый сервис уведомлений.
// email и sms опциональны: nil отключает соответствующий канал.
func NewNotificationService(repo NotificationRepository, email mailer.EmailSender, sms mailer.SMSSender) *NotificationService {
	return &NotificationService{
		repo:  repo,
		email: email,
		sms:   sms,
	}
}

// SetHub устанавливает WebSocket hub для push-доставки.
func (s *NotificationService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// DispatchInput описывает уведомление и адресатов внешних каналов.
type DispatchInput struct {
	UserID uuid.UUID
	Event  string
	Data   interface{}

	// Email канал (пустой EmailTo отключает).
	EmailTo          string
	EmailSubject     string
	EmailBody        string
	EmailAttachments []mailer.Attachment

	// SMS канал (пустой SMSTo отключает).
	SMSTo   string
	SMSText string
}

// Dispatch доставляет уведомление по всем настроенным каналам и возвращает
// итог по каждому. Ошибка любого канала не прерывает остальные и не
// возвращается наружу как ошибка операции.
func (s *NotificationService) Dispatch(ctx context.Context, in DispatchInput) []models.DispatchResult {
	var results []models.DispatchResult

	// In-app канал: запись в БД плюс push через WebSocket.
	_, err := s.CreateNotification(ctx, in.UserID, in.Event, in.Data)
	results = append(results, models.DispatchResult{
		Channel:   models.NotifyChannelInApp,
		Delivered: err == nil,
		Err:       err,
	})
	if err != nil {
		s.logDeliveryError(in, models.NotifyChannelInApp, err)
	}
	if s.hub != nil {
		if err := s.hub.BroadcastToUser(in.UserID, in.Event, in.Data); err != nil {
			// Отсутствие активного WebSocket соединения это норма
			s.logDeliveryError(in, "ws", err)
		}
	}

	if in.EmailTo != "" && s.email != nil && s.email.Enabled() {
		err := s.email.SendEmail(ctx, in.EmailTo, in.EmailSubject, in.EmailBody, in.EmailAttachments...)
		results = append(results, models.DispatchResult{
			Channel:   models.NotifyChannelEmail,
			Delivered: err == nil,
			Err:       err,
		})
		if err != nil {
			s.logDeliveryError(in, models.NotifyChannelEmail, err)
		}
	}

	if in.SMSTo != "" && s.sms != nil && s.sms.Enabled() {
		err := s.sms.SendSMS(ctx, in.SMSTo, in.SMSText)
		results = append(results, models.DispatchResult{
			Channel:   models.NotifyChannelSMS,
			Delivered: err == nil,
			Err:       err,
		})
		if err != nil {
			s.logDeliveryError(in, models.NotifyChannelSMS, err)
		}
	}

	return results
}

func (s *NotificationService) logDeliveryError(in DispatchInput, channel string, err error) {
	if logger.Log == nil {
		return
	}
	logger.Log.WithFields(map[string]interface{}{
		"user_id": in.UserID,
		"event":   in.Event,
		"channel": channel,
		"error":   err.Error(),
	}).Warn("notification service: канал не доставил уведомление")
}

// CreateNotification создаёт новое внутрисистемное уведомление.
func (s *NotificationService) CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) (*models.Notification, error) {
	payload := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notification service: marshal payload %w", err)
	}

	notification := &models.Notification{
		UserID:  userID,
		Payload: payloadBytes,
		IsRead:  false,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}

// ListNotifications возвращает список уведомлений пользователя.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, userID, limit, offset, unreadOnly)
}

// MarkAsRead отмечает уведомление как прочитанное.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if notification.UserID != userID {
		return fmt.Errorf("notification service: у вас нет прав на это уведомление")
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead отмечает все уведомления пользователя как прочитанные.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// DeleteNotification удаляет уведомление.
func (s *NotificationService) DeleteNotification(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if notification.UserID != userID {
		return fmt.Errorf("notification service: у вас нет прав на это уведомление")
	}

	return s.repo.Delete(ctx, id)
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
