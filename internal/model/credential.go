package model

import "time"

// Credential is a user-supplied API key for one provider.
// Field names follow the stored browser format.
type Credential struct {
	Provider string     `json:"provider"`
	Name     string     `json:"name"`
	Key      string     `json:"key"`
	IsValid  *bool      `json:"isValid,omitempty"`
	LastUsed *time.Time `json:"lastUsed,omitempty"`
}

// Valid reports whether the credential was marked valid by the last check.
func (c Credential) Valid() bool {
	return c.IsValid != nil && *c.IsValid
}
