package testhelpers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/keystonepm/mono-repo/backend/shared/go-repositories"
	"github.com/stretchr/testify/require"
)

var (
	keyOnce   sync.Once
	sharedKey *rsa.PrivateKey
	keyErr    error
)

// TestHelper bundles what service and controller tests need: a signing key
// for session tokens and in-memory repositories.
type TestHelper struct {
	T          *testing.T
	Ctx        context.Context
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey

	Store *MemoryStore

	// Repositories
	UserRepo         repositories.UserRepository
	LandlordRepo     repositories.LandlordRepository
	TenantRepo       repositories.TenantRepository
	PropertyRepo     repositories.PropertyRepository
	UnitRepo         repositories.UnitRepository
	LeaseRepo        repositories.LeaseRepository
	LeaseEventRepo   repositories.LeaseEventRepository
	NotificationRepo repositories.NotificationRepository
}

// NewTestHelper builds a fresh store per test. The RSA key is generated once
// per test binary.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	keyOnce.Do(func() {
		sharedKey, keyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	require.NoError(t, keyErr, "Failed to generate test RSA key")

	store := NewMemoryStore()
	return &TestHelper{
		T:                t,
		Ctx:              context.Background(),
		PrivateKey:       sharedKey,
		PublicKey:        &sharedKey.PublicKey,
		Store:            store,
		UserRepo:         store.Users(),
		LandlordRepo:     store.Landlords(),
		TenantRepo:       store.Tenants(),
		PropertyRepo:     store.Properties(),
		UnitRepo:         store.Units(),
		LeaseRepo:        store.Leases(),
		LeaseEventRepo:   store.LeaseEvents(),
		NotificationRepo: store.NotificationRepo(),
	}
}
