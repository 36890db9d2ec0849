package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgconn"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/config"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/routes"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/services"
	internal_utils "github.com/keystonepm/mono-repo/backend/services/lease-service/internal/utils"
	shared_dtos "github.com/keystonepm/mono-repo/backend/shared/go-dtos"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-testhelpers"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEnv struct {
	h      *testhelpers.TestHelper
	router *mux.Router
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	h := testhelpers.NewTestHelper(t)
	cfg := &config.Config{
		OrganizationName: config.OrganizationName,
		AppName:          "lease-service",
		AppUrl:           "http://localhost:8080",
	}
	metrics := services.NewMetrics(prometheus.NewRegistry())
	notifier := services.NewNotificationService(cfg, h.NotificationRepo, h.UserRepo, nil, nil, metrics)
	parties := services.NewPartyResolver(h.LandlordRepo, h.TenantRepo)
	signing := services.NewLeaseSigningService(h.LeaseRepo, h.LeaseEventRepo, parties, notifier, metrics)
	leases := services.NewLeaseService(h.LeaseRepo, h.LeaseEventRepo, h.UnitRepo, h.PropertyRepo, h.TenantRepo, parties, signing, notifier)

	router := mux.NewRouter()
	RegisterSecuredRoutes(router, h.PublicKey,
		NewLeaseController(leases),
		NewSigningController(signing),
		NewNotificationController(notifier),
	)
	return &apiEnv{h: h, router: router}
}

func (e *apiEnv) do(method, path string, user *models.User, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw = e.h.MustJSON(body)
	}
	jwt := ""
	if user != nil {
		jwt = e.h.CreateSessionJWT(user.ID, user.Role)
	}
	return e.h.Serve(e.router, e.h.BuildAuthRequest(method, path, jwt, raw, "web"))
}

func leasePath(tmpl string, id uuid.UUID) string {
	return routeWithID(tmpl, id.String())
}

func routeWithID(tmpl, id string) string {
	url, err := mux.NewRouter().Path(tmpl).URL("id", id)
	if err != nil {
		panic(fmt.Sprintf("bad route template %q: %v", tmpl, err))
	}
	return url.Path
}

func (e *apiEnv) errorCode(rec *httptest.ResponseRecorder) string {
	var body utils.ErrorResponse
	e.h.DecodeJSON(rec, &body)
	return body.Code
}

func TestLeaseSigningFlowOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenantA := env.h.CreateTestTenant(ctx, "tenantA")
	tenantB := env.h.CreateTestTenant(ctx, "tenantB")

	rec := env.do(http.MethodPost, routes.LeasesBase, ll.User, dtos.CreateLeaseRequest{
		UnitID:           ll.Unit.ID,
		TenantIDs:        []uuid.UUID{tenantA.Tenant.ID, tenantB.Tenant.ID},
		RentAmount:       1500,
		Deposit:          1500,
		StartDate:        "2027-02-01",
		EndDate:          "2028-01-31",
		SendForSignature: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created shared_dtos.Lease
	env.h.DecodeJSON(rec, &created)
	assert.Equal(t, models.LeaseStatusPendingSignature, created.Status)
	assert.Equal(t, 1500.0, created.RentAmount)
	assert.Equal(t, "2027-02-01", created.StartDate)
	leaseID := uuid.MustParse(created.ID)

	rec = env.do(http.MethodGet, leasePath(routes.LeaseSigning, leaseID), tenantA.User, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view shared_dtos.SigningView
	env.h.DecodeJSON(rec, &view)
	assert.Equal(t, "tenant", view.UserSigningStatus.Role)
	assert.False(t, view.UserSigningStatus.HasSigned)
	assert.Equal(t, 0, view.SigningProgress.TotalSigned)
	assert.Equal(t, 3, view.SigningProgress.TotalNeeded)

	for i, u := range []*models.User{ll.User, tenantA.User, tenantB.User} {
		rec = env.do(http.MethodPost, leasePath(routes.LeaseSign, leaseID), u, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var signed dtos.SignLeaseResponse
		env.h.DecodeJSON(rec, &signed)
		assert.False(t, signed.AlreadySigned)
		assert.Equal(t, i == 2, signed.Activated)
	}

	rec = env.do(http.MethodPost, leasePath(routes.LeaseSign, leaseID), tenantA.User, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var again dtos.SignLeaseResponse
	env.h.DecodeJSON(rec, &again)
	assert.True(t, again.AlreadySigned)
	assert.Equal(t, models.LeaseStatusActive, again.Lease.Status)
	assert.Equal(t, 100, again.Lease.SigningProgress.Percentage)
	assert.NotNil(t, again.Lease.AllTenantsSignedAt)

	rec = env.do(http.MethodGet, leasePath(routes.LeaseEvents, leaseID), ll.User, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events dtos.ListLeaseEventsResponse
	env.h.DecodeJSON(rec, &events)
	assert.Len(t, events.Results, 6)

	rec = env.do(http.MethodGet, routes.NotificationsBase+"?unread=true", tenantB.User, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox dtos.ListNotificationsResponse
	env.h.DecodeJSON(rec, &inbox)
	types := map[models.NotificationType]int{}
	for _, n := range inbox.Results {
		types[n.Type]++
	}
	assert.Equal(t, 1, types[models.NotificationLeaseSignatureRequested])
	assert.Equal(t, 2, types[models.NotificationSignatureRecorded])
	assert.Equal(t, 1, types[models.NotificationLeaseActivated])

	rec = env.do(http.MethodPost, routeWithID(routes.NotificationMarkRead, inbox.Results[0].ID), tenantB.User, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, routeWithID(routes.NotificationMarkRead, inbox.Results[1].ID), tenantA.User, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaseEndpointErrors(t *testing.T) {
	env := newAPIEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenant := env.h.CreateTestTenant(ctx, "tenant")
	stranger := env.h.CreateTestTenant(ctx, "stranger")
	draft := env.h.CreateTestLease(ctx, ll, models.LeaseStatusDraft, tenant)
	pending := env.h.CreateTestLease(ctx, ll, models.LeaseStatusPendingSignature, tenant)

	t.Run("NoSession", func(t *testing.T) {
		rec := env.do(http.MethodGet, routes.LeasesBase, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("TenantCannotCreate", func(t *testing.T) {
		rec := env.do(http.MethodPost, routes.LeasesBase, tenant.User, dtos.CreateLeaseRequest{})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, utils.ErrCodeForbidden, env.errorCode(rec))
	})
	t.Run("VendorCannotSign", func(t *testing.T) {
		vendor := &models.User{ID: uuid.New(), Role: models.RoleVendor}
		rec := env.do(http.MethodPost, leasePath(routes.LeaseSign, pending.ID), vendor, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("CreateValidation", func(t *testing.T) {
		rec := env.do(http.MethodPost, routes.LeasesBase, ll.User, map[string]any{"rent_amount": -5})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body struct {
			Code    string                              `json:"code"`
			Details []shared_dtos.ValidationErrorDetail `json:"details"`
		}
		env.h.DecodeJSON(rec, &body)
		assert.Equal(t, utils.ErrCodeValidation, body.Code)
		fields := map[string]bool{}
		for _, d := range body.Details {
			fields[d.Field] = true
		}
		assert.True(t, fields["UnitID"])
		assert.True(t, fields["TenantIDs"])
		assert.True(t, fields["RentAmount"])
	})
	t.Run("CreateBadJSON", func(t *testing.T) {
		req := env.h.BuildAuthRequest(http.MethodPost, routes.LeasesBase,
			env.h.CreateSessionJWT(ll.User.ID, models.RoleLandlord), []byte("{not json"), "web")
		rec := env.h.Serve(env.router, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, utils.ErrCodeInvalidPayload, env.errorCode(rec))
	})
	t.Run("CreateEndBeforeStart", func(t *testing.T) {
		rec := env.do(http.MethodPost, routes.LeasesBase, ll.User, dtos.CreateLeaseRequest{
			UnitID:     ll.Unit.ID,
			TenantIDs:  []uuid.UUID{tenant.Tenant.ID},
			RentAmount: 1000,
			StartDate:  "2027-06-01",
			EndDate:    "2027-05-01",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, utils.ErrCodeValidation, env.errorCode(rec))
	})
	t.Run("BadPathID", func(t *testing.T) {
		rec := env.do(http.MethodGet, routeWithID(routes.Lease, "nope"), ll.User, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("UnknownLease", func(t *testing.T) {
		rec := env.do(http.MethodGet, leasePath(routes.LeaseSigning, uuid.New()), tenant.User, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, utils.ErrCodeNotFound, env.errorCode(rec))
	})
	t.Run("NotAParty", func(t *testing.T) {
		rec := env.do(http.MethodPost, leasePath(routes.LeaseSign, pending.ID), stranger.User, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, utils.ErrCodeUnauthorized, env.errorCode(rec))
	})
	t.Run("SignDraft", func(t *testing.T) {
		rec := env.do(http.MethodPost, leasePath(routes.LeaseSign, draft.ID), tenant.User, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, utils.ErrCodeWrongStatus, env.errorCode(rec))
	})
	t.Run("SignLosesLockRace", func(t *testing.T) {
		env.h.Store.FailNextLocks(&pgconn.PgError{Code: "40001"}, &pgconn.PgError{Code: "40001"})
		rec := env.do(http.MethodPost, leasePath(routes.LeaseSign, pending.ID), tenant.User, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, utils.ErrCodeRowVersionConflict, env.errorCode(rec))

		stored, err := env.h.LeaseRepo.GetByID(ctx, pending.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.TenantByTenantID(tenant.Tenant.ID).SignedAt)
	})
	t.Run("TerminateNeedsReason", func(t *testing.T) {
		rec := env.do(http.MethodPost, leasePath(routes.LeaseTerminate, pending.ID), ll.User, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("TenantCannotPatch", func(t *testing.T) {
		rec := env.do(http.MethodPatch, leasePath(routes.Lease, draft.ID), tenant.User, map[string]any{"rent_amount": 10})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestLandlordLifecycleEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	ctx := env.h.Ctx
	ll := env.h.CreateTestLandlord(ctx, "landlord")
	tenant := env.h.CreateTestTenant(ctx, "tenant")
	draft := env.h.CreateTestLease(ctx, ll, models.LeaseStatusDraft, tenant)
	scrap := env.h.CreateTestLease(ctx, ll, models.LeaseStatusDraft, tenant)

	rec := env.do(http.MethodPatch, leasePath(routes.Lease, draft.ID), ll.User, map[string]any{"rent_amount": 1725.25})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var patched shared_dtos.Lease
	env.h.DecodeJSON(rec, &patched)
	assert.Equal(t, 1725.25, patched.RentAmount)
	assert.Equal(t, int64(2), patched.RowVersion)

	rec = env.do(http.MethodPost, leasePath(routes.LeaseSend, draft.ID), ll.User, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, leasePath(routes.LeaseResendInvitation, draft.ID), ll.User, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resent dtos.ResendInvitationResponse
	env.h.DecodeJSON(rec, &resent)
	assert.Equal(t, []string{tenant.Tenant.ID.String()}, resent.NotifiedTenantIDs)

	rec = env.do(http.MethodDelete, leasePath(routes.Lease, scrap.ID), ll.User, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodGet, leasePath(routes.Lease, scrap.ID), ll.User, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, routes.LeasesBase, tenant.User, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list dtos.ListLeasesResponse
	env.h.DecodeJSON(rec, &list)
	assert.Equal(t, 1, list.Total)
}

func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{internal_utils.ErrLeaseNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
		{internal_utils.ErrNotificationNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
		{internal_utils.ErrNotLeaseParty, http.StatusForbidden, utils.ErrCodeUnauthorized},
		{internal_utils.ErrWrongStatus, http.StatusConflict, utils.ErrCodeWrongStatus},
		{fmt.Errorf("%w: bad dates", internal_utils.ErrInvalidLeaseTerms), http.StatusBadRequest, utils.ErrCodeValidation},
		{fmt.Errorf("%w: lost race", utils.ErrRowVersionConflict), http.StatusConflict, utils.ErrCodeRowVersionConflict},
		{&utils.AppError{StatusCode: http.StatusTeapot, Code: "teapot", Message: "short and stout"}, http.StatusTeapot, "teapot"},
		{errors.New("boom"), http.StatusInternalServerError, utils.ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tc.code+`"`)
		})
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthCheckHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthController(stubPinger{}).HealthCheckHandler(rec, httptest.NewRequest(http.MethodGet, routes.Health, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewHealthController(stubPinger{err: errors.New("down")}).HealthCheckHandler(rec, httptest.NewRequest(http.MethodGet, routes.Health, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
