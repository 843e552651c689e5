package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendFarmNotificationEmail(ctx context.Context, toEmail, recipientName, farmName, title, message string) error {
	args := m.Called(ctx, toEmail, recipientName, farmName, title, message)
	return args.Error(0)
}
