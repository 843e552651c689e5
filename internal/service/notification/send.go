package notification

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"farm-management/internal/domain"
)

const emailTimeout = 30 * time.Second

var markup = bluemonday.StrictPolicy()

// plainText strips any markup an admin pasted into a notification. Clients and
// the email template escape on output, so entities are decoded again here.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(markup.Sanitize(s)))
}

// Send creates a notification for every member of the farm, or for the single
// recipient when one is given. Failed inserts are logged and counted but do
// not abort the batch.
func (s *service) Send(ctx context.Context, sender *domain.User, input domain.SendNotificationInput) (*SendResult, error) {
	input.Normalize()
	input.Title = plainText(input.Title)
	input.Message = plainText(input.Message)
	if input.FarmID == "" || input.Title == "" || input.Message == "" {
		return nil, ErrInvalidInput
	}

	farm, err := s.farmRepo.GetByID(ctx, input.FarmID)
	if err != nil {
		return nil, fmt.Errorf("failed to get farm: %w", err)
	}
	if farm == nil {
		return nil, ErrFarmNotFound
	}

	recipients, err := s.userRepo.ListByFarm(ctx, farm.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get farm users: %w", err)
	}

	if input.RecipientID != nil {
		recipients = pickRecipient(recipients, *input.RecipientID)
		if len(recipients) == 0 {
			return nil, ErrRecipientInvalid
		}
	}

	result := &SendResult{FarmID: farm.ID}
	farmID := farm.ID

	for _, user := range recipients {
		notif := &domain.Notification{
			ID:        uuid.New(),
			UserID:    user.ID,
			FarmID:    &farmID,
			Category:  input.Category,
			Title:     input.Title,
			Message:   input.Message,
			CreatedAt: s.now(),
		}

		if err := s.notifRepo.Create(ctx, notif); err != nil {
			s.logger.Error("Failed to create notification",
				zap.String("user_id", user.ID.String()),
				zap.String("farm_id", farmID),
				zap.Error(err))
			result.Failed++
			continue
		}
		result.Created++
		s.invalidateUnread(ctx, domain.Scope{UserID: user.ID, FarmID: farmID})

		if input.SendEmail && s.emailSvc != nil && user.Email != "" {
			s.mailers.Add(1)
			go func(toEmail, recipientName string) {
				defer s.mailers.Done()

				ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
				defer cancel()

				if err := s.emailSvc.SendFarmNotificationEmail(ctx, toEmail, recipientName, farm.Name, input.Title, input.Message); err != nil {
					s.logger.Warn("Failed to send notification email", zap.String("to", toEmail), zap.Error(err))
				}
			}(user.Email, user.FullName)
		}
	}

	s.logger.Info("Notifications sent",
		zap.String("sender_id", sender.ID.String()),
		zap.String("farm_id", farmID),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed))

	return result, nil
}

func pickRecipient(users []domain.User, id uuid.UUID) []domain.User {
	for _, u := range users {
		if u.ID == id {
			return []domain.User{u}
		}
	}
	return nil
}
