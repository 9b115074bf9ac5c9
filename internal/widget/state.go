package widget

// Session is the client-side conversation context. Empty strings mean unset.
type Session struct {
	SessionID string
	UserID    string
	Username  string
	Token     string
}

// LoginState is either LoggedOut or LoggedIn.
type LoginState interface {
	isLoginState()
}

// LoggedOut is the state without a complete login identity.
type LoggedOut struct{}

// LoggedIn carries the identity returned by the commerce backend.
type LoggedIn struct {
	UserID   string
	Username string
}

func (LoggedOut) isLoginState() {}
func (LoggedIn) isLoginState()  {}

// LoginState derives the login state. Both the user id and username must be present.
func (s Session) LoginState() LoginState {
	if s.UserID != "" && s.Username != "" {
		return LoggedIn{UserID: s.UserID, Username: s.Username}
	}
	return LoggedOut{}
}

// Status is what the status bar shows for a LoginState.
type Status struct {
	Label  string
	Button string
	Class  string
}

// StatusFor maps a LoginState to its status bar.
func StatusFor(state LoginState) Status {
	if in, ok := state.(LoggedIn); ok {
		return Status{
			Label:  "Logged In as " + in.Username,
			Button: "Logout",
			Class:  "logout-btn",
		}
	}
	return Status{
		Label:  "Not Logged In",
		Button: "Login",
		Class:  "login-btn",
	}
}
