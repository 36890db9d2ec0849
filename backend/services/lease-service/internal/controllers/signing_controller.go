package controllers

import (
	"net/http"

	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/services"
	shared_dtos "github.com/keystonepm/mono-repo/backend/shared/go-dtos"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

type SigningController struct {
	signingService *services.LeaseSigningService
}

func NewSigningController(s *services.LeaseSigningService) *SigningController {
	return &SigningController{signingService: s}
}

// GET /api/v1/leases/{id}/signing
func (c *SigningController) GetSigningViewHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := c.signingService.GetSigningView(r.Context(), rc, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view)
}

// POST /api/v1/leases/{id}/sign
func (c *SigningController) SignHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SignHandler")

	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	logger = logger.WithField("userID", rc.UserID).WithField("leaseID", id)

	res, err := c.signingService.Sign(r.Context(), rc, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if res.AlreadySigned {
		logger.Info("Repeat signature ignored")
	} else {
		logger.WithField("activated", res.Activated).Info("Signature recorded")
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SignLeaseResponse{
		Lease:         shared_dtos.NewLeaseFromModel(*res.Lease),
		AlreadySigned: res.AlreadySigned,
		Activated:     res.Activated,
	})
}

// POST /api/v1/leases/{id}/resend-invitation
func (c *SigningController) ResendInvitationHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	notified, err := c.signingService.ResendInvitation(r.Context(), rc, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	resp := dtos.ResendInvitationResponse{NotifiedTenantIDs: make([]string, 0, len(notified))}
	for _, tid := range notified {
		resp.NotifiedTenantIDs = append(resp.NotifiedTenantIDs, tid.String())
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
