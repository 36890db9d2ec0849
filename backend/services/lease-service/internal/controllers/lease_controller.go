package controllers

import (
	"net/http"

	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/services"
	shared_dtos "github.com/keystonepm/mono-repo/backend/shared/go-dtos"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

type LeaseController struct {
	leaseService *services.LeaseService
}

func NewLeaseController(s *services.LeaseService) *LeaseController {
	return &LeaseController{leaseService: s}
}

// POST /api/v1/leases
func (c *LeaseController) CreateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	var req dtos.CreateLeaseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lease, err := c.leaseService.CreateLease(r.Context(), rc, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.Logger.WithField("leaseID", lease.ID).WithField("userID", rc.UserID).Info("Lease created via API")
	utils.RespondWithJSON(w, http.StatusCreated, shared_dtos.NewLeaseFromModel(*lease))
}

// GET /api/v1/leases
func (c *LeaseController) ListMyLeasesHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	leases, err := c.leaseService.ListMyLeases(r.Context(), rc)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	resp := dtos.ListLeasesResponse{Results: make([]shared_dtos.Lease, 0, len(leases))}
	for _, l := range leases {
		resp.Results = append(resp.Results, shared_dtos.NewLeaseFromModel(*l))
	}
	resp.Total = len(resp.Results)
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/leases/{id}
func (c *LeaseController) GetLeaseHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	lease, err := c.leaseService.GetLease(r.Context(), rc, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, shared_dtos.NewLeaseFromModel(*lease))
}

// PATCH /api/v1/leases/{id}
func (c *LeaseController) UpdateDraftTermsHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateLeaseTermsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lease, err := c.leaseService.UpdateDraftTerms(r.Context(), rc, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, shared_dtos.NewLeaseFromModel(*lease))
}

// DELETE /api/v1/leases/{id}
func (c *LeaseController) DeleteDraftHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.leaseService.DeleteDraft(r.Context(), rc, id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/leases/{id}/send
func (c *LeaseController) SendForSignatureHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	lease, err := c.leaseService.SendForSignature(r.Context(), rc, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, shared_dtos.NewLeaseFromModel(*lease))
}

// POST /api/v1/leases/{id}/terminate
func (c *LeaseController) TerminateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.TerminateLeaseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lease, err := c.leaseService.TerminateLease(r.Context(), rc, id, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, shared_dtos.NewLeaseFromModel(*lease))
}

// GET /api/v1/leases/{id}/events
func (c *LeaseController) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	events, err := c.leaseService.ListEvents(r.Context(), rc, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	resp := dtos.ListLeaseEventsResponse{Results: make([]shared_dtos.LeaseEvent, 0, len(events))}
	for _, ev := range events {
		resp.Results = append(resp.Results, shared_dtos.NewLeaseEventFromModel(*ev))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
