package controllers

import (
	"net/http"
	"strconv"

	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/services"
	shared_dtos "github.com/keystonepm/mono-repo/backend/shared/go-dtos"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

type NotificationController struct {
	notificationService *services.NotificationService
}

func NewNotificationController(s *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: s}
}

// GET /api/v1/notifications?unread=true&limit=20
func (c *NotificationController) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	unreadOnly := false
	if v := q.Get("unread"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "unread must be true or false", nil, err)
			return
		}
		unreadOnly = b
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "limit must be a positive integer", nil, err)
			return
		}
		limit = n
	}

	list, err := c.notificationService.ListForUser(r.Context(), rc, unreadOnly, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	resp := dtos.ListNotificationsResponse{Results: make([]shared_dtos.Notification, 0, len(list))}
	for _, n := range list {
		resp.Results = append(resp.Results, shared_dtos.NewNotificationFromModel(*n))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/notifications/{id}/read
func (c *NotificationController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	n, err := c.notificationService.MarkRead(r.Context(), rc, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, shared_dtos.NewNotificationFromModel(*n))
}
