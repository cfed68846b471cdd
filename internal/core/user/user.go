// Package user owns accounts: registration, credential login, refresh-token
// sessions, and per-user content preferences.
package user

import (
	"time"

	"github.com/ayazaki/hakoba/internal/platform/sec"
)

// User is a registered account.
//
// ShowExplicit is the default the access gate applies when a request carries
// no explicit query parameter. It rides in the access token, so a changed
// preference takes effect on the next login or refresh.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PassHash     string    `json:"-"`
	Picture      string    `json:"picture,omitempty"`
	Perms        sec.Perms `json:"perms"`
	ShowExplicit bool      `json:"show_explicit"`
	CreateDate   time.Time `json:"create_date"`
	ModifiedDate time.Time `json:"modified_date"`
}
