package auth

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}
