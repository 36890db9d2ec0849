package testhelpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-repositories"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

// MemoryStore is an in-memory stand-in for the Postgres repositories.
// LockAndUpdate is serialized on a store-wide lock, which gives the same
// guarantee as the row lock for the leases under test.
type MemoryStore struct {
	mu     sync.RWMutex
	lockMu sync.Mutex

	users         map[uuid.UUID]models.User
	landlords     map[uuid.UUID]models.Landlord
	tenants       map[uuid.UUID]models.Tenant
	properties    map[uuid.UUID]models.Property
	units         map[uuid.UUID]models.Unit
	leases        map[uuid.UUID]*models.Lease
	events        []models.LeaseEvent
	notifications []models.Notification

	lockErrs        []error
	notificationErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[uuid.UUID]models.User),
		landlords:  make(map[uuid.UUID]models.Landlord),
		tenants:    make(map[uuid.UUID]models.Tenant),
		properties: make(map[uuid.UUID]models.Property),
		units:      make(map[uuid.UUID]models.Unit),
		leases:     make(map[uuid.UUID]*models.Lease),
	}
}

// FailNextLocks makes the next LockAndUpdate calls return errs in order,
// before mutate runs.
func (s *MemoryStore) FailNextLocks(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockErrs = append(s.lockErrs, errs...)
}

// FailNotificationCreates makes every notification insert fail with err until reset with nil.
func (s *MemoryStore) FailNotificationCreates(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notificationErr = err
}

// Notifications returns a snapshot of every stored notification, oldest first.
func (s *MemoryStore) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification(nil), s.notifications...)
}

// Events returns a snapshot of the audit trail for a lease.
func (s *MemoryStore) Events(leaseID uuid.UUID) []models.LeaseEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.LeaseEvent
	for _, ev := range s.events {
		if ev.LeaseID == leaseID {
			out = append(out, ev)
		}
	}
	return out
}

func (s *MemoryStore) Users() repositories.UserRepository             { return memUsers{s} }
func (s *MemoryStore) Landlords() repositories.LandlordRepository     { return memLandlords{s} }
func (s *MemoryStore) Tenants() repositories.TenantRepository         { return memTenants{s} }
func (s *MemoryStore) Properties() repositories.PropertyRepository    { return memProperties{s} }
func (s *MemoryStore) Units() repositories.UnitRepository             { return memUnits{s} }
func (s *MemoryStore) Leases() repositories.LeaseRepository           { return memLeases{s} }
func (s *MemoryStore) LeaseEvents() repositories.LeaseEventRepository { return memLeaseEvents{s} }
func (s *MemoryStore) NotificationRepo() repositories.NotificationRepository {
	return memNotifications{s}
}

func cloneLease(l *models.Lease) *models.Lease {
	c := *l
	c.Tenants = append([]models.LeaseTenant(nil), l.Tenants...)
	c.PendingEvents = nil
	return &c
}

/* ---------- users / profiles ---------- */

type memUsers struct{ s *MemoryStore }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.CreatedAt, u.UpdatedAt = utils.NowUTC(), utils.NowUTC()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email && u.DeletedAt == nil {
			return &u, nil
		}
	}
	return nil, nil
}

type memLandlords struct{ s *MemoryStore }

func (r memLandlords) Create(_ context.Context, l *models.Landlord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.CreatedAt = utils.NowUTC()
	r.s.landlords[l.ID] = *l
	return nil
}

func (r memLandlords) GetByID(_ context.Context, id uuid.UUID) (*models.Landlord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if l, ok := r.s.landlords[id]; ok {
		return &l, nil
	}
	return nil, nil
}

func (r memLandlords) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Landlord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.landlords {
		if l.UserID == userID {
			return &l, nil
		}
	}
	return nil, nil
}

type memTenants struct{ s *MemoryStore }

func (r memTenants) Create(_ context.Context, t *models.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.CreatedAt = utils.NowUTC()
	r.s.tenants[t.ID] = *t
	return nil
}

func (r memTenants) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if t, ok := r.s.tenants[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (r memTenants) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.tenants {
		if t.UserID == userID {
			return &t, nil
		}
	}
	return nil, nil
}

type memProperties struct{ s *MemoryStore }

func (r memProperties) Create(_ context.Context, p *models.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.CreatedAt = utils.NowUTC()
	r.s.properties[p.ID] = *p
	return nil
}

func (r memProperties) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.properties[id]; ok {
		return &p, nil
	}
	return nil, nil
}

type memUnits struct{ s *MemoryStore }

func (r memUnits) Create(_ context.Context, u *models.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.CreatedAt = utils.NowUTC()
	r.s.units[u.ID] = *u
	return nil
}

func (r memUnits) GetByID(_ context.Context, id uuid.UUID) (*models.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.units[id]; ok {
		return &u, nil
	}
	return nil, nil
}

/* ---------- leases ---------- */

type memLeases struct{ s *MemoryStore }

func (r memLeases) Create(_ context.Context, lease *models.Lease) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := utils.NowUTC()
	lease.CreatedAt, lease.UpdatedAt = now, now
	lease.RowVersion = 1
	for i := range lease.Tenants {
		lease.Tenants[i].LeaseID = lease.ID
	}
	r.s.events = append(r.s.events, lease.PendingEvents...)
	lease.PendingEvents = nil
	r.s.leases[lease.ID] = cloneLease(lease)
	return nil
}

func (r memLeases) GetByID(_ context.Context, id uuid.UUID) (*models.Lease, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.leases[id]
	if !ok || l.DeletedAt != nil {
		return nil, nil
	}
	return cloneLease(l), nil
}

func (r memLeases) listWhere(keep func(*models.Lease) bool) []*models.Lease {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Lease
	for _, l := range r.s.leases {
		if l.DeletedAt == nil && keep(l) {
			out = append(out, cloneLease(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memLeases) ListByLandlordID(_ context.Context, landlordID uuid.UUID) ([]*models.Lease, error) {
	return r.listWhere(func(l *models.Lease) bool { return l.LandlordID == landlordID }), nil
}

func (r memLeases) ListByTenantID(_ context.Context, tenantID uuid.UUID) ([]*models.Lease, error) {
	return r.listWhere(func(l *models.Lease) bool { return l.TenantByTenantID(tenantID) != nil }), nil
}

func (r memLeases) ListByStatusEndingBefore(
	_ context.Context,
	statuses []models.LeaseStatus,
	before time.Time,
) ([]*models.Lease, error) {
	out := r.listWhere(func(l *models.Lease) bool {
		for _, s := range statuses {
			if l.Status == s && l.EndDate.Before(before) {
				return true
			}
		}
		return false
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (r memLeases) UpdateIfVersion(_ context.Context, lease *models.Lease, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.leases[lease.ID]
	if !ok || cur.DeletedAt != nil || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cur.UnitID = lease.UnitID
	cur.RentAmountCents = lease.RentAmountCents
	cur.DepositCents = lease.DepositCents
	cur.StartDate = lease.StartDate
	cur.EndDate = lease.EndDate
	cur.RowVersion++
	cur.UpdatedAt = utils.NowUTC()
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r memLeases) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error {
	return repositories.WithRetry(ctx, 3, id.String(),
		func(ctx context.Context, _ string) (*models.Lease, error) {
			l, err := r.GetByID(ctx, id)
			if err != nil || l == nil {
				return nil, err
			}
			return l, nil
		},
		r.UpdateIfVersion,
		mutate,
	)
}

func (r memLeases) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leases[id]
	if !ok || l.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	now := utils.NowUTC()
	l.DeletedAt = &now
	return nil
}

func (r memLeases) LockAndUpdate(
	_ context.Context,
	id uuid.UUID,
	mutate func(*models.Lease) error,
) (*models.Lease, error) {
	r.s.lockMu.Lock()
	defer r.s.lockMu.Unlock()

	r.s.mu.Lock()
	if len(r.s.lockErrs) > 0 {
		err := r.s.lockErrs[0]
		r.s.lockErrs = r.s.lockErrs[1:]
		r.s.mu.Unlock()
		return nil, err
	}
	cur, ok := r.s.leases[id]
	if !ok || cur.DeletedAt != nil {
		r.s.mu.Unlock()
		return nil, pgx.ErrNoRows
	}
	working := cloneLease(cur)
	r.s.mu.Unlock()

	if err := mutate(working); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	working.RowVersion++
	working.UpdatedAt = utils.NowUTC()
	r.s.events = append(r.s.events, working.PendingEvents...)
	working.PendingEvents = nil
	r.s.leases[id] = cloneLease(working)
	return working, nil
}

/* ---------- events ---------- */

type memLeaseEvents struct{ s *MemoryStore }

func (r memLeaseEvents) Create(_ context.Context, ev *models.LeaseEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events = append(r.s.events, *ev)
	return nil
}

func (r memLeaseEvents) ListByLeaseID(_ context.Context, leaseID uuid.UUID) ([]*models.LeaseEvent, error) {
	var out []*models.LeaseEvent
	for _, ev := range r.s.Events(leaseID) {
		ev := ev
		out = append(out, &ev)
	}
	return out, nil
}

/* ---------- notifications ---------- */

type memNotifications struct{ s *MemoryStore }

func (r memNotifications) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.notificationErr != nil {
		return r.s.notificationErr
	}
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r memNotifications) ListByUserID(
	_ context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	limit int,
) ([]*models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.UserID != userID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		out = append(out, &n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r memNotifications) MarkRead(_ context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		n := &r.s.notifications[i]
		if n.ID != id || n.UserID != userID {
			continue
		}
		if n.ReadAt == nil {
			now := utils.NowUTC()
			n.ReadAt = &now
		}
		out := *n
		return &out, nil
	}
	return nil, pgx.ErrNoRows
}
