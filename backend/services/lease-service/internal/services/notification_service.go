package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/config"
	internal_utils "github.com/keystonepm/mono-repo/backend/services/lease-service/internal/utils"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-repositories"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// NotificationRequest is one message to one user.
type NotificationRequest struct {
	UserID    uuid.UUID
	Type      models.NotificationType
	Title     string
	Message   string
	ActionURL string
	Metadata  map[string]any
}

// Notifier is what lease workflows call at state transitions.
type Notifier interface {
	Notify(ctx context.Context, req NotificationRequest) error
}

// EmailSender delivers one email.
type EmailSender interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, plainText, htmlBody string) error
}

// SMSSender delivers one text message.
type SMSSender interface {
	SendSMS(ctx context.Context, toPhone, body string) error
}

/* ------------------------------------------------------------------
   SendGrid / Twilio adapters
------------------------------------------------------------------ */

type SendGridEmailSender struct {
	client    *sendgrid.Client
	orgName   string
	fromEmail string
	sandbox   bool
}

func NewSendGridEmailSender(cfg *config.Config) *SendGridEmailSender {
	if cfg.SendGridAPIKey == "" {
		return nil
	}
	return &SendGridEmailSender{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		orgName:   cfg.OrganizationName,
		fromEmail: cfg.LDFlag_SendgridFromEmail,
		sandbox:   cfg.LDFlag_SendgridSandboxMode,
	}
}

func (s *SendGridEmailSender) SendEmail(_ context.Context, toName, toEmail, subject, plainText, htmlBody string) error {
	from := mail.NewEmail(s.orgName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	msg := mail.NewSingleEmail(from, subject, to, plainText, htmlBody)
	msg.TrackingSettings = &mail.TrackingSettings{
		ClickTracking: &mail.ClickTrackingSetting{
			Enable: utils.Ptr(false),
		},
	}
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	resp, err := s.client.Send(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: sendgrid status %d", utils.ErrExternalServiceFailure, resp.StatusCode)
	}
	return nil
}

type TwilioSMSSender struct {
	client    *twilio.RestClient
	fromPhone string
}

func NewTwilioSMSSender(cfg *config.Config) *TwilioSMSSender {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		return nil
	}
	return &TwilioSMSSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		fromPhone: cfg.LDFlag_TwilioFromPhone,
	}
}

func (s *TwilioSMSSender) SendSMS(_ context.Context, toPhone, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(s.fromPhone)
	params.SetBody(body)
	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	return nil
}

/* ------------------------------------------------------------------
   NotificationService
------------------------------------------------------------------ */

type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	email         EmailSender
	sms           SMSSender
	smsEnabled    bool
	appURL        string
	metrics       *Metrics
}

// NewNotificationService wires the channels. A nil sender disables that channel.
func NewNotificationService(
	cfg *config.Config,
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	email EmailSender,
	sms SMSSender,
	metrics *Metrics,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		email:         email,
		sms:           sms,
		smsEnabled:    cfg.LDFlag_SMSNotificationsEnabled,
		appURL:        cfg.AppUrl,
		metrics:       metrics,
	}
}

// Notify persists the in-app notification, then fans out to email and SMS.
// Only the in-app write can fail the call; channel failures are logged and counted.
func (s *NotificationService) Notify(ctx context.Context, req NotificationRequest) error {
	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		ActionURL: req.ActionURL,
		CreatedAt: utils.NowUTC(),
	}
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return fmt.Errorf("marshal notification metadata: %w", err)
		}
		msg := json.RawMessage(raw)
		n.Metadata = &msg
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.metrics.NotificationFailures.WithLabelValues("in_app").Inc()
		return fmt.Errorf("persist notification: %w", err)
	}

	logger := utils.Logger.WithField("userID", req.UserID).WithField("type", req.Type)

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil || user == nil {
		logger.WithError(err).Warn("Notification recipient not found; skipping email/SMS")
		return nil
	}

	// ---------- SendGrid Email ----------
	if s.email != nil {
		if utils.IsDeliverableEmail(user.Email) {
			link := s.appURL + req.ActionURL
			plain := fmt.Sprintf("%s\n\n%s", req.Message, link)
			htmlBody := fmt.Sprintf(notificationEmailHTML,
				html.EscapeString(req.Title), html.EscapeString(req.Message), html.EscapeString(link))
			if err := s.email.SendEmail(ctx, user.FullName(), user.Email, req.Title, plain, htmlBody); err != nil {
				s.metrics.NotificationFailures.WithLabelValues("email").Inc()
				logger.WithError(err).Warn("Email send failure")
			}
		} else {
			logger.Warnf("Undeliverable email %q, skipping email", user.Email)
		}
	} else {
		logger.Debug("SendGrid sender is nil, skipping email")
	}

	// ---------- Twilio SMS ----------
	if s.sms != nil && s.smsEnabled {
		phone := utils.Val(user.PhoneNumber)
		if utils.IsE164(phone) {
			if err := s.sms.SendSMS(ctx, phone, req.Title+" :: "+req.Message); err != nil {
				s.metrics.NotificationFailures.WithLabelValues("sms").Inc()
				logger.WithError(err).Warn("SMS send failure")
			}
		} else if phone != "" {
			logger.Warnf("Phone %q is not E.164, skipping SMS", phone)
		}
	}
	return nil
}

/* ---------- inbox ---------- */

func (s *NotificationService) ListForUser(
	ctx context.Context,
	rc models.RequestContext,
	unreadOnly bool,
	limit int,
) ([]*models.Notification, error) {
	return s.notifications.ListByUserID(ctx, rc.UserID, unreadOnly, utils.ClampLimit(limit))
}

// MarkRead fails with ErrNotificationNotFound for other users' notifications.
func (s *NotificationService) MarkRead(ctx context.Context, rc models.RequestContext, id uuid.UUID) (*models.Notification, error) {
	n, err := s.notifications.MarkRead(ctx, id, rc.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, internal_utils.ErrNotificationNotFound
	}
	return n, err
}

// notifyAll sends every request and swallows failures; a lost notification
// never undoes a committed lease change.
func notifyAll(ctx context.Context, n Notifier, reqs []NotificationRequest) {
	for _, req := range reqs {
		if err := n.Notify(ctx, req); err != nil {
			utils.Logger.WithError(err).
				WithField("userID", req.UserID).
				Warnf("Failed to dispatch %s notification", req.Type)
		}
	}
}

const notificationEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#1f2933;">
  <h2>%s</h2>
  <p>%s</p>
  <p><a href="%s" style="background:#1e40af;color:#fff;padding:10px 16px;border-radius:4px;text-decoration:none;">Open in Keystone</a></p>
</body>
</html>`
