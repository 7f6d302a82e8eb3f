// Package mailer отправляет исходящие email и SMS.
// Доставка best-effort: ошибки возвращаются вызывающему коду,
// который логирует их и никогда не откатывает основную операцию.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/smtp"
	"net/textproto"
	"time"
)

// Attachment описывает вложение письма.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailSender отправляет email, опционально с вложениями.
type EmailSender interface {
	Enabled() bool
	SendEmail(ctx context.Context, to, subject, body string, attachments ...Attachment) error
}

// SMSSender отправляет SMS.
type SMSSender interface {
	Enabled() bool
	SendSMS(ctx context.Context, to, text string) error
}

// SMTPMailer отправляет письма через SMTP.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPMailer создаёт SMTP-отправитель. Пустой host отключает отправку.
func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

// Enabled сообщает, настроен ли SMTP.
func (m *SMTPMailer) Enabled() bool {
	return m != nil && m.host != ""
}

// SendEmail отправляет письмо. Вложения кодируются в multipart/mixed.
func (m *SMTPMailer) SendEmail(ctx context.Context, to, subject, body string, attachments ...Attachment) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer: SMTP не настроен")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := buildMessage(m.from, to, subject, body, attachments)
	if err != nil {
		return fmt.Errorf("mailer: сборка письма: %w", err)
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("mailer: отправка через %s: %w", addr, err)
	}

	return nil
}

// buildMessage собирает MIME-письмо с вложениями.
func buildMessage(from, to, subject, body string, attachments []Attachment) ([]byte, error) {
	var buf bytes.Buffer

	if len(attachments) == 0 {
		fmt.Fprintf(&buf, "From: %s\r\nTo: %s\r\nSubject: %s\r\n", from, to, subject)
		buf.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(body)
		return buf.Bytes(), nil
	}

	writer := multipart.NewWriter(&buf)
	var head bytes.Buffer
	fmt.Fprintf(&head, "From: %s\r\nTo: %s\r\nSubject: %s\r\n", from, to, subject)
	fmt.Fprintf(&head, "MIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, att := range attachments {
		header := textproto.MIMEHeader{}
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(att.Data)
		if _, err := part.Write([]byte(encoded)); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return append(head.Bytes(), buf.Bytes()...), nil
}

// WebhookSMS отправляет SMS через HTTP-webhook внешнего провайдера.
type WebhookSMS struct {
	url  string
	http *http.Client
}

// NewWebhookSMS создаёт SMS-отправитель. Пустой url отключает отправку.
func NewWebhookSMS(url string) *WebhookSMS {
	return &WebhookSMS{
		url: url,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Enabled сообщает, настроен ли SMS-провайдер.
func (s *WebhookSMS) Enabled() bool {
	return s != nil && s.url != ""
}

// SendSMS отправляет текст на номер через webhook.
func (s *WebhookSMS) SendSMS(ctx context.Context, to, text string) error {
	if !s.Enabled() {
		return fmt.Errorf("mailer: SMS-провайдер не настроен")
	}

	body, err := json.Marshal(map[string]string{"to": to, "text": text})
	if err != nil {
		return fmt.Errorf("mailer: сериализация SMS: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailer: создание запроса SMS: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: отправка SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mailer: SMS-провайдер вернул статус %d", resp.StatusCode)
	}

	return nil
}
