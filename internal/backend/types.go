package backend

const CookieDisabled = "none"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type pathRequest struct {
	Path string `json:"path"`
}

type operationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	NewPath string `json:"new_path,omitempty"`
}

type loginStatusResponse struct {
	LoggedIn bool `json:"loggedIn"`
}

type configResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    SessionConfig `json:"data"`
}

// SessionConfig is the backend option map returned by /read-config.
type SessionConfig map[string]any

// UseCookie returns the use_cookie option, "none" when unset.
func (c SessionConfig) UseCookie() string {
	if v, ok := c["use_cookie"].(string); ok && v != "" {
		return v
	}
	return CookieDisabled
}

func (c SessionConfig) CookieEnabled() bool {
	return c.UseCookie() != CookieDisabled
}
