package mockapi

import (
	"encoding/json"
	"net/http"
	"time"
)

type notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"notification_type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

var defaultPreferences = json.RawMessage(`[{"notification_type":"system","email_enabled":true,"in_app_enabled":true}]`)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread_only") == "true"
	limit := limitQuery(r, 50)
	s.mu.RLock()
	defer s.mu.RUnlock()
	me := s.currentUser(r)
	out := []notification{}
	for _, n := range s.notifications[me.ID] {
		if len(out) == limit {
			break
		}
		if !unreadOnly || !n.IsRead {
			out = append(out, *n)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNotificationCount(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	me := s.currentUser(r)
	unread := 0
	for _, n := range s.notifications[me.ID] {
		if !n.IsRead {
			unread++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"unread_count": unread,
		"total_count":  len(s.notifications[me.ID]),
	})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "notificationID")
	s.mu.Lock()
	defer s.mu.Unlock()
	me := s.currentUser(r)
	for _, n := range s.notifications[me.ID] {
		if n.ID == id {
			n.IsRead = true
			writeMessage(w, "Notification marked as read")
			return
		}
	}
	writeError(w, http.StatusNotFound, "Notification not found")
}

func (s *Server) handleReadAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	me := s.currentUser(r)
	for _, n := range s.notifications[me.ID] {
		n.IsRead = true
	}
	writeMessage(w, "All notifications marked as read")
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "notificationID")
	s.mu.Lock()
	defer s.mu.Unlock()
	me := s.currentUser(r)
	list := s.notifications[me.ID]
	for i, n := range list {
		if n.ID == id {
			s.notifications[me.ID] = append(list[:i:i], list[i+1:]...)
			writeMessage(w, "Notification deleted")
			return
		}
	}
	writeError(w, http.StatusNotFound, "Notification not found")
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs, ok := s.preferences[s.currentUser(r).ID]
	if !ok {
		prefs = defaultPreferences
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var in json.RawMessage
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.mu.Lock()
	s.preferences[s.currentUser(r).ID] = in
	s.mu.Unlock()
	writeMessage(w, "Preferences updated")
}
