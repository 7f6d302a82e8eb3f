package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/goroutine"
	"github.com/vsuitehq/gigster-backend/internal/logger"
	"github.com/vsuitehq/gigster-backend/internal/mailer"
	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
	"github.com/vsuitehq/gigster-backend/internal/render"
	"github.com/vsuitehq/gigster-backend/internal/validation"
)

// InvoiceRepository описывает взаимодействие сервиса с хранилищем счетов.
type InvoiceRepository interface {
	NextInvoiceNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, clientID *uuid.UUID, status string, limit, offset int) ([]models.Invoice, error)
	UpdateDraft(ctx context.Context, inv *models.Invoice) error
	MarkSent(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListOverdue(ctx context.Context) ([]models.Invoice, error)
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]models.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceClientLoader описывает минимальный контракт для загрузки клиента.
type InvoiceClientLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// InvoiceService содержит бизнес-логику жизненного цикла счетов.
type InvoiceService struct {
	repo     InvoiceRepository
	clients  InvoiceClientLoader
	notifier *NotificationService
	pdf      PDFRenderer
	storage  PDFStorage
	now      func() time.Time
}

// NewInvoiceService создаёт новый сервис счетов.
func NewInvoiceService(repo InvoiceRepository, clients InvoiceClientLoader, notifier *NotificationService, pdf PDFRenderer, storage PDFStorage) *InvoiceService {
	return &InvoiceService{
		repo:     repo,
		clients:  clients,
		notifier: notifier,
		pdf:      pdf,
		storage:  storage,
		now:      time.Now,
	}
}

// InvoiceInput описывает входные данные счёта.
type InvoiceInput struct {
	ClientID       uuid.UUID
	ProjectID      *uuid.UUID
	LineItems      models.LineItems
	TaxRate        float64
	DiscountAmount float64
	DueDate        time.Time
	Notes          *string
}

// CreateInvoice создаёт черновик счёта. Все производные суммы
// пересчитываются на сервере, входные значения сумм игнорируются.
func (s *InvoiceService) CreateInvoice(ctx context.Context, in InvoiceInput, createdBy uuid.UUID) (*models.Invoice, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.clients.GetByID(ctx, in.ClientID); err != nil {
		return nil, err
	}

	number, err := s.repo.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		InvoiceNumber:  number,
		ClientID:       in.ClientID,
		ProjectID:      in.ProjectID,
		LineItems:      in.LineItems,
		TaxRate:        in.TaxRate,
		DiscountAmount: in.DiscountAmount,
		Status:         models.InvoiceStatusDraft,
		DueDate:        in.DueDate,
		Notes:          in.Notes,
		CreatedByID:    createdBy,
	}
	invoice.Recalculate()

	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetInvoice возвращает счёт по идентификатору.
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

// ListInvoices возвращает счета с фильтрами по клиенту и статусу.
func (s *InvoiceService) ListInvoices(ctx context.Context, clientID *uuid.UUID, status string, limit, offset int) ([]models.Invoice, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, clientID, status, limit, offset)
}

// UpdateDraft изменяет черновик счёта и пересчитывает суммы.
// Счёт в любом другом статусе неизменяем.
func (s *InvoiceService) UpdateDraft(ctx context.Context, id uuid.UUID, in InvoiceInput) (*models.Invoice, error) {
	invoice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return nil, apperror.ErrNotDraft
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	invoice.LineItems = in.LineItems
	invoice.TaxRate = in.TaxRate
	invoice.DiscountAmount = in.DiscountAmount
	if !in.DueDate.IsZero() {
		invoice.DueDate = in.DueDate
	}
	if in.Notes != nil {
		invoice.Notes = in.Notes
	}
	invoice.Recalculate()

	if err := s.repo.UpdateDraft(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// SendInvoice переводит счёт из draft в sent и отправляет его клиенту.
// Доставка выполняется в фоне и не влияет на итог перехода.
func (s *InvoiceService) SendInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.MarkSent(ctx, id)
	if err != nil {
		return nil, err
	}

	goroutine.SafeGo(func() {
		s.deliverInvoice(context.Background(), invoice)
	})

	return invoice, nil
}

// deliverInvoice рендерит PDF счёта и отправляет письмо клиенту.
func (s *InvoiceService) deliverInvoice(ctx context.Context, invoice *models.Invoice) {
	client, err := s.clients.GetByID(ctx, invoice.ClientID)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithField("invoice_id", invoice.ID).
				WithError(err).Warn("invoice service: клиент для доставки не найден")
		}
		return
	}

	var attachments []mailer.Attachment
	if s.pdf != nil && s.pdf.Enabled() && s.storage != nil {
		content := invoiceDocument(invoice)
		data, err := s.pdf.Render(ctx, "Invoice "+invoice.InvoiceNumber, content)
		if err != nil {
			if logger.Log != nil {
				logger.Log.WithField("invoice_id", invoice.ID).
					WithError(err).Warn("invoice service: PDF рендер не удался")
			}
		} else {
			if _, err := s.storage.SavePDF(ctx, invoice.ID, data); err != nil && logger.Log != nil {
				logger.Log.WithField("invoice_id", invoice.ID).
					WithError(err).Warn("invoice service: PDF не сохранён")
			}
			attachments = append(attachments, mailer.Attachment{
				Filename:    fmt.Sprintf("%s.pdf", invoice.InvoiceNumber),
				ContentType: "application/pdf",
				Data:        data,
			})
		}
	}

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, DispatchInput{
			UserID:           invoice.CreatedByID,
			Event:            "invoice.sent",
			Data:             invoice,
			EmailTo:          client.Email,
			EmailSubject:     fmt.Sprintf("Invoice %s", invoice.InvoiceNumber),
			EmailBody:        fmt.Sprintf("Invoice %s for $%s is due %s.\n", invoice.InvoiceNumber, render.FormatMoney(invoice.TotalAmount), invoice.DueDate.Format("January 2, 2006")),
			EmailAttachments: attachments,
		})
	}
}

// ListOverdue возвращает просроченные счета.
func (s *InvoiceService) ListOverdue(ctx context.Context) ([]models.Invoice, error) {
	return s.repo.ListOverdue(ctx)
}

// ListPayments возвращает платежи по счёту.
func (s *InvoiceService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]models.Payment, error) {
	if _, err := s.repo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, invoiceID)
}

// DeleteInvoice удаляет черновик счёта.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *InvoiceService) validateInput(in InvoiceInput) error {
	if len(in.LineItems) == 0 {
		return fmt.Errorf("invoice service: счёт должен содержать хотя бы одну позицию")
	}
	if len(in.LineItems) > validation.MaxLineItemsCount {
		return fmt.Errorf("invoice service: слишком много позиций")
	}
	for _, item := range in.LineItems {
		if err := validation.ValidateNonEmpty("описание позиции", item.Description); err != nil {
			return fmt.Errorf("invoice service: %w", err)
		}
		if item.Quantity < 0 {
			return fmt.Errorf("invoice service: количество не может быть отрицательным")
		}
		if err := validation.ValidateAmount("ставка позиции", item.Rate); err != nil {
			return fmt.Errorf("invoice service: %w", err)
		}
	}
	if err := validation.ValidateTaxRate(in.TaxRate); err != nil {
		return fmt.Errorf("invoice service: %w", err)
	}
	if err := validation.ValidateAmount("скидка", in.DiscountAmount); err != nil {
		return fmt.Errorf("invoice service: %w", err)
	}
	return nil
}

// invoiceDocument формирует Markdown представление счёта для PDF.
func invoiceDocument(invoice *models.Invoice) string {
	doc := fmt.Sprintf("# Invoice %s\n\n", invoice.InvoiceNumber)
	doc += "| Description | Quantity | Rate | Amount |\n| --- | --- | --- | --- |\n"
	for _, item := range invoice.LineItems {
		doc += fmt.Sprintf("| %s | %g | $%s | $%s |\n",
			item.Description, item.Quantity, render.FormatMoney(item.Rate), render.FormatMoney(item.Amount))
	}
	doc += fmt.Sprintf("\nSubtotal: $%s\n", render.FormatMoney(invoice.Subtotal))
	if invoice.TaxAmount > 0 {
		doc += fmt.Sprintf("Tax (%.2f%%): $%s\n", invoice.TaxRate, render.FormatMoney(invoice.TaxAmount))
	}
	if invoice.DiscountAmount > 0 {
		doc += fmt.Sprintf("Discount: -$%s\n", render.FormatMoney(invoice.DiscountAmount))
	}
	doc += fmt.Sprintf("\n**Total: $%s**\n", render.FormatMoney(invoice.TotalAmount))
	doc += fmt.Sprintf("\nDue date: %s\n", invoice.DueDate.Format("January 2, 2006"))
	return doc
}
