// Package session persists the client's authentication state: the access and
// refresh tokens, the cached user profile, and the admin flag.
package session

import (
	"encoding/json"
	"strconv"
)

// Field names one persisted session entry
type Field string

const (
	FieldAccess  Field = "access"
	FieldRefresh Field = "refresh"
	FieldUser    Field = "user"
	FieldIsStaff Field = "is_staff"
)

// Fields lists every persisted entry
var Fields = []Field{FieldAccess, FieldRefresh, FieldUser, FieldIsStaff}

// Store is the session's backing storage. Entries are independent: writes
// are not atomic across fields and readers must tolerate partial state.
type Store interface {
	Get(field Field) (string, bool)
	Set(field Field, value string) error
	ClearAll() error
}

// UserProfile is the current-user representation returned by user/me/
type UserProfile struct {
	Username  string `json:"nom_utilisateur"`
	Email     string `json:"email"`
	FirstName string `json:"prenom"`
	LastName  string `json:"nom"`
	IsAdmin   bool   `json:"est_admin"`
}

// DisplayName returns "First Last", falling back to the username
func (u *UserProfile) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// Session is a point-in-time view of the store
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *UserProfile // nil when absent or unreadable
	IsAdmin      bool
}

// Authenticated reports whether an access token is present
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Snapshot reads every field once. Missing or malformed entries leave the
// corresponding part of the session empty.
func Snapshot(store Store) Session {
	var s Session
	s.AccessToken, _ = store.Get(FieldAccess)
	s.RefreshToken, _ = store.Get(FieldRefresh)

	if raw, ok := store.Get(FieldUser); ok && raw != "" {
		var profile UserProfile
		if err := json.Unmarshal([]byte(raw), &profile); err == nil {
			s.User = &profile
		}
	}

	if raw, ok := store.Get(FieldIsStaff); ok {
		s.IsAdmin, _ = strconv.ParseBool(raw)
	}
	return s
}

// SaveProfile persists the user profile and its admin flag
func SaveProfile(store Store, profile *UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	if err := store.Set(FieldUser, string(raw)); err != nil {
		return err
	}
	return store.Set(FieldIsStaff, strconv.FormatBool(profile.IsAdmin))
}
