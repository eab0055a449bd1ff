package keystore

import (
	"strings"
	"time"

	"wkchat/internal/model"
)

// Mask redacts a key for display. Keys of 8 characters or fewer are fully redacted;
// longer keys keep their first and last 4 characters.
func Mask(key string) string {
	r := []rune(key)
	n := len(r)
	if n <= 8 {
		return strings.Repeat("*", n)
	}
	return string(r[:4]) + strings.Repeat("*", n-8) + string(r[n-4:])
}

// View is the display projection of a credential.
type View struct {
	Provider  string     `json:"provider"`
	Name      string     `json:"name"`
	MaskedKey string     `json:"maskedKey"`
	Key       string     `json:"key,omitempty"`
	IsValid   *bool      `json:"isValid,omitempty"`
	LastUsed  *time.Time `json:"lastUsed,omitempty"`
}

// NewView projects a credential; the raw key is only included when reveal is set.
func NewView(c model.Credential, reveal bool) View {
	v := View{
		Provider:  c.Provider,
		Name:      c.Name,
		MaskedKey: Mask(c.Key),
		IsValid:   c.IsValid,
		LastUsed:  c.LastUsed,
	}
	if reveal {
		v.Key = c.Key
	}
	return v
}
