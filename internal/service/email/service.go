package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"farm-management/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

type Service interface {
	SendFarmNotificationEmail(ctx context.Context, toEmail, recipientName, farmName, title, message string) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

func NewService(cfg *config.Config) Service {
	return &service{
		client: resend.NewClient(cfg.ResendAPIKey),
		config: cfg,
	}
}

func render(templateName string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		return "", fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

func (s *service) sendEmail(ctx context.Context, toEmail, subject, templateName string, data interface{}) error {
	html, err := render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Farm Management <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    html,
		Subject: subject,
	}

	_, err = s.client.Emails.SendWithContext(ctx, params)
	return err
}

type farmNotificationData struct {
	Title    string
	Name     string
	FarmName string
	Message  string
	Link     string
}

func farmNotificationSubject(title, farmName string) string {
	if farmName == "" {
		return title
	}
	return fmt.Sprintf("%s - %s", title, farmName)
}

func (s *service) SendFarmNotificationEmail(ctx context.Context, toEmail, recipientName, farmName, title, message string) error {
	data := farmNotificationData{
		Title:    title,
		Name:     recipientName,
		FarmName: farmName,
		Message:  message,
		Link:     fmt.Sprintf("https://%s/notifications", s.config.Domain),
	}
	return s.sendEmail(ctx, toEmail, farmNotificationSubject(title, farmName), "farm_notification.html", data)
}
