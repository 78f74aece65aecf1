package core

// Principal is the identity an Issuer extracted from a verified credential.
type Principal struct {
	// ID is the subject identifier (e.g. the "sub" claim).
	ID string `json:"id"`

	// Username is the login name used to look the user up in the directory.
	// Falls back to ID when the credential carries no separate username.
	Username string `json:"username,omitempty"`

	// Issuer is the name of the trusted issuer that verified this principal.
	Issuer string `json:"issuer"`

	// Claims are the raw claims of the credential.
	Claims map[string]any `json:"claims,omitempty"`
}

// LookupKey returns the key used to find the principal in the directory.
func (p *Principal) LookupKey() string {
	if p.Username != "" {
		return p.Username
	}
	return p.ID
}
