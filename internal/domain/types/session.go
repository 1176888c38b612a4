package types

// Session is the in-memory view of who is signed in.
type Session struct {
	User            *Profile `json:"user"`
	UserType        UserType `json:"userType,omitempty"`
	Token           string   `json:"token,omitempty"`
	IsAuthenticated bool     `json:"isAuthenticated"`
	IsLoading       bool     `json:"-"`
}

// Consistent reports whether the authenticated flag agrees with the token,
// user and userType fields.
func (s Session) Consistent() bool {
	if !s.IsAuthenticated {
		return true
	}
	return s.Token != "" && s.User != nil && s.UserType != ""
}

// PersistedSession is the durable snapshot kept under the auth-storage key.
// IsLoading is never persisted.
type PersistedSession struct {
	State   Session `json:"state"`
	Version int     `json:"version"`
}

// LoginResult is returned by a successful login. ProfileFetchDegraded is set
// when /auth/me failed and User was built from the login answer instead.
type LoginResult struct {
	Token                string   `json:"token"`
	UserType             UserType `json:"user_type"`
	User                 Profile  `json:"user"`
	ProfileFetchDegraded bool     `json:"profile_fetch_degraded"`
}
