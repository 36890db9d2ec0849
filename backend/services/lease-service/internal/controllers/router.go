package controllers

import (
	"crypto/rsa"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/routes"
	"github.com/keystonepm/mono-repo/backend/shared/go-middleware"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

// RegisterSecuredRoutes mounts every authenticated endpoint on router.
func RegisterSecuredRoutes(
	router *mux.Router,
	pub *rsa.PublicKey,
	leaseController *LeaseController,
	signingController *SigningController,
	notificationController *NotificationController,
) {
	// Any lease party
	secured := router.NewRoute().Subrouter()
	secured.Use(
		middleware.AuthMiddleware(pub),
		middleware.RequireRole(models.RoleLandlord, models.RoleTenant),
	)
	secured.HandleFunc(routes.LeasesBase, leaseController.ListMyLeasesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Lease, leaseController.GetLeaseHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LeaseEvents, leaseController.ListEventsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LeaseSigning, signingController.GetSigningViewHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LeaseSign, signingController.SignHandler).Methods(http.MethodPost)

	// Landlord only
	landlord := router.NewRoute().Subrouter()
	landlord.Use(
		middleware.AuthMiddleware(pub),
		middleware.RequireRole(models.RoleLandlord),
	)
	landlord.HandleFunc(routes.LeasesBase, leaseController.CreateLeaseHandler).Methods(http.MethodPost)
	landlord.HandleFunc(routes.Lease, leaseController.UpdateDraftTermsHandler).Methods(http.MethodPatch)
	landlord.HandleFunc(routes.Lease, leaseController.DeleteDraftHandler).Methods(http.MethodDelete)
	landlord.HandleFunc(routes.LeaseSend, leaseController.SendForSignatureHandler).Methods(http.MethodPost)
	landlord.HandleFunc(routes.LeaseTerminate, leaseController.TerminateLeaseHandler).Methods(http.MethodPost)
	landlord.HandleFunc(routes.LeaseResendInvitation, signingController.ResendInvitationHandler).Methods(http.MethodPost)

	// Any signed-in user
	inbox := router.NewRoute().Subrouter()
	inbox.Use(middleware.AuthMiddleware(pub))
	inbox.HandleFunc(routes.NotificationsBase, notificationController.ListNotificationsHandler).Methods(http.MethodGet)
	inbox.HandleFunc(routes.NotificationMarkRead, notificationController.MarkReadHandler).Methods(http.MethodPost)
}
