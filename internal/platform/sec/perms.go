// Copyright (c) 2026 Hakoba. All rights reserved.
// Author: a.yazaki.dev@gmail.com

package sec

// # Permission Tiers

// Perms represents the authorization tier granted to a requester.
//
// The set is closed: AccessGate policy tables switch over it exhaustively,
// so adding a tier is a compile-time-visible change everywhere it's matched.
type Perms string

const (
	// Unrestricted system access
	PermsAdmin Perms = "admin"

	// Can moderate content: see and restore deleted posts, edit any post
	PermsModerator Perms = "moderator"

	// Default tier for registered accounts; can upload and manage own posts
	PermsUser Perms = "user"

	// Unauthenticated requester
	PermsGuest Perms = "guest"
)

// Valid reports whether p is one of the four known tiers.
func (p Perms) Valid() bool {
	switch p {
	case PermsAdmin, PermsModerator, PermsUser, PermsGuest:
		return true
	}
	return false
}

// # Tier Hierarchy

// AtLeast checks if the current tier meets or exceeds the required target tier.
func (p Perms) AtLeast(target Perms) bool {
	return p.level() >= target.level()
}

// level maps a tier to a numeric hierarchy level for comparison logic.
func (p Perms) level() int {

	// Linear scale (10-40) allows for future intermediate tiers
	switch p {
	case PermsAdmin:
		return 40
	case PermsModerator:
		return 30
	case PermsUser:
		return 20
	case PermsGuest:
		return 10
	default:
		return 0
	}
}
