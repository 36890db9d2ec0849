package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/config"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-testhelpers"
	"github.com/prometheus/client_golang/prometheus"
)

type sentEmail struct {
	To      string
	Subject string
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeEmailSender) SendEmail(_ context.Context, _, toEmail, subject, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: toEmail, Subject: subject})
	return nil
}

func (f *fakeEmailSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSMSSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSMSSender) SendSMS(_ context.Context, toPhone, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, toPhone)
	return nil
}

func (f *fakeSMSSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// testEnv wires every service against one in-memory store.
type testEnv struct {
	h        *testhelpers.TestHelper
	cfg      *config.Config
	email    *fakeEmailSender
	sms      *fakeSMSSender
	metrics  *Metrics
	notifier *NotificationService
	parties  *PartyResolver
	signing  *LeaseSigningService
	leases   *LeaseService
	expiry   *LeaseExpiryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	h := testhelpers.NewTestHelper(t)
	cfg := &config.Config{
		OrganizationName:               config.OrganizationName,
		AppName:                        "lease-service",
		AppUrl:                         "http://localhost:8080",
		LDFlag_SendgridFromEmail:       "no-reply@keystone.test",
		LDFlag_TwilioFromPhone:         "+10005550006",
		LDFlag_SendgridSandboxMode:     true,
		LDFlag_SMSNotificationsEnabled: true,
	}
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	metrics := NewMetrics(prometheus.NewRegistry())
	notifier := NewNotificationService(cfg, h.NotificationRepo, h.UserRepo, email, sms, metrics)
	parties := NewPartyResolver(h.LandlordRepo, h.TenantRepo)
	signing := NewLeaseSigningService(h.LeaseRepo, h.LeaseEventRepo, parties, notifier, metrics)
	leases := NewLeaseService(h.LeaseRepo, h.LeaseEventRepo, h.UnitRepo, h.PropertyRepo, h.TenantRepo, parties, signing, notifier)
	expiry := NewLeaseExpiryService(h.LeaseRepo, parties, notifier, metrics)
	return &testEnv{
		h:        h,
		cfg:      cfg,
		email:    email,
		sms:      sms,
		metrics:  metrics,
		notifier: notifier,
		parties:  parties,
		signing:  signing,
		leases:   leases,
		expiry:   expiry,
	}
}

func rcFor(u *models.User) models.RequestContext {
	return models.RequestContext{UserID: u.ID, Role: u.Role}
}

// notificationsOf filters stored notifications by type.
func (e *testEnv) notificationsOf(typ models.NotificationType) []models.Notification {
	var out []models.Notification
	for _, n := range e.h.Store.Notifications() {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func recipients(ns []models.Notification) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.UserID)
	}
	return out
}

func eventActions(evs []models.LeaseEvent) []models.LeaseEventAction {
	out := make([]models.LeaseEventAction, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Action)
	}
	return out
}
