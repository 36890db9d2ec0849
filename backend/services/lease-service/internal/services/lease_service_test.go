package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/dtos"
	internal_utils "github.com/keystonepm/mono-repo/backend/services/lease-service/internal/utils"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-testhelpers"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createLeaseRequest(ll *testhelpers.LandlordFixture, tenants ...*testhelpers.TenantFixture) dtos.CreateLeaseRequest {
	ids := make([]uuid.UUID, len(tenants))
	for i, tf := range tenants {
		ids[i] = tf.Tenant.ID
	}
	return dtos.CreateLeaseRequest{
		UnitID:     ll.Unit.ID,
		TenantIDs:  ids,
		RentAmount: 1850.50,
		Deposit:    1850,
		StartDate:  "2027-01-01",
		EndDate:    "2027-12-31",
	}
}

func TestCreateLease_Draft(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenantA := env.h.CreateTestTenant(ctx, "tenantA")
	tenantB := env.h.CreateTestTenant(ctx, "tenantB")

	lease, err := env.leases.CreateLease(ctx, rcFor(ll.User), createLeaseRequest(ll, tenantA, tenantB))
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusDraft, lease.Status)
	assert.Equal(t, ll.Landlord.ID, lease.LandlordID)
	assert.Equal(t, int64(185050), lease.RentAmountCents)
	assert.Equal(t, int64(185000), lease.DepositCents)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), lease.StartDate)
	require.Len(t, lease.Tenants, 2)
	assert.True(t, lease.TenantByTenantID(tenantA.Tenant.ID).IsPrimaryTenant)
	assert.False(t, lease.TenantByTenantID(tenantB.Tenant.ID).IsPrimaryTenant)
	assert.Nil(t, lease.LandlordSignedAt)

	assert.Equal(t, []models.LeaseEventAction{models.LeaseEventCreated}, eventActions(env.h.Store.Events(lease.ID)))
	assert.Empty(t, env.h.Store.Notifications())
}

func TestCreateLease_SendForSignatureInvitesTenants(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenantA := env.h.CreateTestTenant(ctx, "tenantA")
	tenantB := env.h.CreateTestTenant(ctx, "tenantB")

	req := createLeaseRequest(ll, tenantA, tenantB)
	req.SendForSignature = true
	req.PrimaryTenantID = &tenantB.Tenant.ID

	lease, err := env.leases.CreateLease(ctx, rcFor(ll.User), req)
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusPendingSignature, lease.Status)
	assert.True(t, lease.TenantByTenantID(tenantB.Tenant.ID).IsPrimaryTenant)
	assert.False(t, lease.TenantByTenantID(tenantA.Tenant.ID).IsPrimaryTenant)

	assert.ElementsMatch(t,
		[]uuid.UUID{tenantA.User.ID, tenantB.User.ID},
		recipients(env.notificationsOf(models.NotificationLeaseSignatureRequested)),
	)
	assert.Equal(t,
		[]models.LeaseEventAction{models.LeaseEventCreated, models.LeaseEventSentForSignature},
		eventActions(env.h.Store.Events(lease.ID)),
	)
	assert.Equal(t, 2, env.sms.count())
}

func TestCreateLease_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	otherLL := env.h.CreateTestLandlord(ctx, "other")
	tenant := env.h.CreateTestTenant(ctx, "tenant")
	tenantB := env.h.CreateTestTenant(ctx, "tenantB")

	cases := []struct {
		name    string
		rc      models.RequestContext
		mutate  func(*dtos.CreateLeaseRequest)
		wantErr error
	}{
		{"EndBeforeStart", rcFor(ll.User), func(r *dtos.CreateLeaseRequest) { r.EndDate = "2026-12-01" }, internal_utils.ErrInvalidLeaseTerms},
		{"SameDayTerm", rcFor(ll.User), func(r *dtos.CreateLeaseRequest) { r.EndDate = r.StartDate }, internal_utils.ErrInvalidLeaseTerms},
		{"BadDate", rcFor(ll.User), func(r *dtos.CreateLeaseRequest) { r.StartDate = "01/01/2027" }, internal_utils.ErrInvalidLeaseTerms},
		{"ZeroRent", rcFor(ll.User), func(r *dtos.CreateLeaseRequest) { r.RentAmount = 0 }, internal_utils.ErrInvalidLeaseTerms},
		{"NoTenants", rcFor(ll.User), func(r *dtos.CreateLeaseRequest) { r.TenantIDs = nil }, internal_utils.ErrInvalidLeaseTerms},
		{"DuplicateTenant", rcFor(ll.User), func(r *dtos.CreateLeaseRequest) {
			r.TenantIDs = []uuid.UUID{tenant.Tenant.ID, tenant.Tenant.ID}
		}, internal_utils.ErrInvalidLeaseTerms},
		{"UnknownTenant", rcFor(ll.User), func(r *dtos.CreateLeaseRequest) {
			r.TenantIDs = []uuid.UUID{uuid.New()}
		}, internal_utils.ErrInvalidLeaseTerms},
		{"PrimaryNotListed", rcFor(ll.User), func(r *dtos.CreateLeaseRequest) {
			r.PrimaryTenantID = &tenantB.Tenant.ID
		}, internal_utils.ErrInvalidLeaseTerms},
		{"UnknownUnit", rcFor(ll.User), func(r *dtos.CreateLeaseRequest) { r.UnitID = uuid.New() }, internal_utils.ErrInvalidLeaseTerms},
		{"SomeoneElsesUnit", rcFor(ll.User), func(r *dtos.CreateLeaseRequest) { r.UnitID = otherLL.Unit.ID }, internal_utils.ErrNotLeaseParty},
		{"TenantCaller", rcFor(tenant.User), func(*dtos.CreateLeaseRequest) {}, internal_utils.ErrNotLeaseParty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := createLeaseRequest(ll, tenant)
			tc.mutate(&req)
			_, err := env.leases.CreateLease(ctx, tc.rc, req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	leases, err := env.h.LeaseRepo.ListByLandlordID(ctx, ll.Landlord.ID)
	require.NoError(t, err)
	assert.Empty(t, leases)
}

func TestListMyLeases(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenantA := env.h.CreateTestTenant(ctx, "tenantA")
	tenantB := env.h.CreateTestTenant(ctx, "tenantB")
	env.h.CreateTestLease(ctx, ll, models.LeaseStatusDraft, tenantA)
	env.h.CreateTestLease(ctx, ll, models.LeaseStatusPendingSignature, tenantA, tenantB)

	mine, err := env.leases.ListMyLeases(ctx, rcFor(ll.User))
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	mine, err = env.leases.ListMyLeases(ctx, rcFor(tenantA.User))
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	mine, err = env.leases.ListMyLeases(ctx, rcFor(tenantB.User))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].Tenants, 2)

	_, err = env.leases.ListMyLeases(ctx, models.RequestContext{UserID: uuid.New(), Role: models.RoleVendor})
	assert.ErrorIs(t, err, internal_utils.ErrNotLeaseParty)
}

func TestGetLease_PartiesOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenant := env.h.CreateTestTenant(ctx, "tenant")
	stranger := env.h.CreateTestTenant(ctx, "stranger")
	lease := env.h.CreateTestLease(ctx, ll, models.LeaseStatusDraft, tenant)

	got, err := env.leases.GetLease(ctx, rcFor(tenant.User), lease.ID)
	require.NoError(t, err)
	assert.Equal(t, lease.ID, got.ID)

	_, err = env.leases.GetLease(ctx, rcFor(stranger.User), lease.ID)
	assert.ErrorIs(t, err, internal_utils.ErrNotLeaseParty)

	_, err = env.leases.GetLease(ctx, rcFor(ll.User), uuid.New())
	assert.ErrorIs(t, err, internal_utils.ErrLeaseNotFound)
}

func TestUpdateDraftTerms(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenant := env.h.CreateTestTenant(ctx, "tenant")
	draft := env.h.CreateTestLease(ctx, ll, models.LeaseStatusDraft, tenant)

	updated, err := env.leases.UpdateDraftTerms(ctx, rcFor(ll.User), draft.ID, dtos.UpdateLeaseTermsRequest{
		RentAmount: utils.Ptr(2000.0),
		EndDate:    utils.Ptr(draft.EndDate.AddDate(0, 6, 0).Format("2006-01-02")),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200000), updated.RentAmountCents)
	assert.Equal(t, draft.DepositCents, updated.DepositCents)
	assert.True(t, updated.EndDate.Equal(draft.EndDate.AddDate(0, 6, 0)))
	assert.Equal(t, draft.RowVersion+1, updated.RowVersion)

	evs := env.h.Store.Events(draft.ID)
	require.NotEmpty(t, evs)
	assert.Equal(t, models.LeaseEventTermsUpdated, evs[len(evs)-1].Action)

	t.Run("EndBeforeStart", func(t *testing.T) {
		_, err := env.leases.UpdateDraftTerms(ctx, rcFor(ll.User), draft.ID, dtos.UpdateLeaseTermsRequest{
			EndDate: utils.Ptr(draft.StartDate.AddDate(0, 0, -1).Format("2006-01-02")),
		})
		assert.ErrorIs(t, err, internal_utils.ErrInvalidLeaseTerms)
	})
	t.Run("NotDraft", func(t *testing.T) {
		pending := env.h.CreateTestLease(ctx, ll, models.LeaseStatusPendingSignature, tenant)
		_, err := env.leases.UpdateDraftTerms(ctx, rcFor(ll.User), pending.ID, dtos.UpdateLeaseTermsRequest{
			RentAmount: utils.Ptr(1.0),
		})
		assert.ErrorIs(t, err, internal_utils.ErrWrongStatus)
	})
	t.Run("TenantCannotEdit", func(t *testing.T) {
		_, err := env.leases.UpdateDraftTerms(ctx, rcFor(tenant.User), draft.ID, dtos.UpdateLeaseTermsRequest{
			RentAmount: utils.Ptr(1.0),
		})
		assert.ErrorIs(t, err, internal_utils.ErrNotLeaseParty)
	})
}

func TestSendForSignature(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenant := env.h.CreateTestTenant(ctx, "tenant")
	draft := env.h.CreateTestLease(ctx, ll, models.LeaseStatusDraft, tenant)

	sent, err := env.leases.SendForSignature(ctx, rcFor(ll.User), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusPendingSignature, sent.Status)
	assert.Equal(t,
		[]uuid.UUID{tenant.User.ID},
		recipients(env.notificationsOf(models.NotificationLeaseSignatureRequested)),
	)

	_, err = env.leases.SendForSignature(ctx, rcFor(ll.User), draft.ID)
	assert.ErrorIs(t, err, internal_utils.ErrWrongStatus)
}

func TestTerminateLease(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenant := env.h.CreateTestTenant(ctx, "tenant")
	active := env.h.CreateTestLease(ctx, ll, models.LeaseStatusActive, tenant)
	pending := env.h.CreateTestLease(ctx, ll, models.LeaseStatusPendingSignature, tenant)

	_, err := env.leases.TerminateLease(ctx, rcFor(tenant.User), active.ID, "moving out")
	assert.ErrorIs(t, err, internal_utils.ErrNotLeaseParty)

	_, err = env.leases.TerminateLease(ctx, rcFor(ll.User), pending.ID, "changed my mind")
	assert.ErrorIs(t, err, internal_utils.ErrWrongStatus)

	done, err := env.leases.TerminateLease(ctx, rcFor(ll.User), active.ID, "sale of property")
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusTerminated, done.Status)
	require.NotNil(t, done.TerminationReason)
	assert.Equal(t, "sale of property", *done.TerminationReason)

	notices := env.notificationsOf(models.NotificationLeaseTerminated)
	assert.Equal(t, []uuid.UUID{tenant.User.ID}, recipients(notices))

	_, err = env.signing.Sign(ctx, rcFor(tenant.User), active.ID)
	assert.ErrorIs(t, err, internal_utils.ErrWrongStatus)
}

func TestDeleteDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenant := env.h.CreateTestTenant(ctx, "tenant")
	draft := env.h.CreateTestLease(ctx, ll, models.LeaseStatusDraft, tenant)
	pending := env.h.CreateTestLease(ctx, ll, models.LeaseStatusPendingSignature, tenant)

	assert.ErrorIs(t, env.leases.DeleteDraft(ctx, rcFor(ll.User), pending.ID), internal_utils.ErrWrongStatus)
	assert.ErrorIs(t, env.leases.DeleteDraft(ctx, rcFor(tenant.User), draft.ID), internal_utils.ErrNotLeaseParty)

	require.NoError(t, env.leases.DeleteDraft(ctx, rcFor(ll.User), draft.ID))
	_, err := env.leases.GetLease(ctx, rcFor(ll.User), draft.ID)
	assert.ErrorIs(t, err, internal_utils.ErrLeaseNotFound)
	assert.ErrorIs(t, env.leases.DeleteDraft(ctx, rcFor(ll.User), draft.ID), internal_utils.ErrLeaseNotFound)
}

func TestListEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenant := env.h.CreateTestTenant(ctx, "tenant")
	stranger := env.h.CreateTestTenant(ctx, "stranger")
	lease := env.h.CreateTestLease(ctx, ll, models.LeaseStatusPendingSignature, tenant)

	_, err := env.signing.Sign(ctx, rcFor(tenant.User), lease.ID)
	require.NoError(t, err)

	evs, err := env.leases.ListEvents(ctx, rcFor(ll.User), lease.ID)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, models.LeaseEventTenantSigned, evs[0].Action)
	require.NotNil(t, evs[0].ActorUserID)
	assert.Equal(t, tenant.User.ID, *evs[0].ActorUserID)

	_, err = env.leases.ListEvents(ctx, rcFor(stranger.User), lease.ID)
	assert.ErrorIs(t, err, internal_utils.ErrNotLeaseParty)
}
