package auth

// FacebookLoginRequest holds the body for POST /v1/auth/facebook.
type FacebookLoginRequest struct {
	AccessToken string `json:"access_token"`
	// ExpiresIn is the lifetime in seconds reported by the client SDK; optional.
	ExpiresIn int64 `json:"expires_in,omitempty"`
}

// FacebookLoginResponse is returned on AUTHENTICATION_SUCCESSFUL.
type FacebookLoginResponse struct {
	Status            string   `json:"status"`
	AccountIdentifier string   `json:"account_identifier"`
	Provider          string   `json:"provider"`
	Roles             []string `json:"roles"`
	ProfileID         string   `json:"profile_id,omitempty"`
}

// FacebookLoginResult is the internal result from FacebookLoginService.
type FacebookLoginResult struct {
	Status            string
	AccountIdentifier string
	Provider          string
	Roles             []string
	ProfileID         string
}
