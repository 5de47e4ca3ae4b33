package dashboard

// Session is the explicit session state owned by the top-level view loop.
// It is the only place the token and the account email live on the client;
// nothing probes ambient storage for them.
type Session struct {
	Token    string
	Name     string
	Email    string
	LoggedIn bool
}

// Begin records a successful login. The session gate flips to the dashboard
// view when LoggedIn is true.
func (s *Session) Begin(token, name, email string) {
	s.Token = token
	s.Name = name
	s.Email = email
	s.LoggedIn = true
}

// End drops the token and returns the gate to the login view. The server is
// notified separately; an already-issued token stays valid until expiry.
func (s *Session) End() {
	*s = Session{}
}
