package api

import (
	"errors"
	"net/http"

	"github.com/hackgods/salon-booking/internal/notify"
	"github.com/hackgods/salon-booking/internal/session"
)

func listNotificationsHandler(svc NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if !sess.Authenticated() {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "login required")
			return
		}

		unread := r.URL.Query().Get("unread") == "true"
		list, err := svc.List(r.Context(), sess.UserID, unread, intQuery(r, "limit", 50))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		if list == nil {
			list = []notify.Notification{}
		}
		writeJSON(w, http.StatusOK, NotificationsResponse{Notifications: list})
	}
}

func markNotificationReadHandler(svc NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if !sess.Authenticated() {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "login required")
			return
		}
		id, ok := uuidParam(w, r, "id", "invalid_notification_id")
		if !ok {
			return
		}

		if err := svc.MarkRead(r.Context(), sess.UserID, id); err != nil {
			if errors.Is(err, notify.ErrNotificationNotFound) {
				writeError(w, http.StatusNotFound, "notification_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
