// Package access maps a requester's permission tier and content preferences
// to the visibility predicate applied by post reads and searches.
//
// The predicate is computed once at the request boundary and passed down
// immutably; no store or search component re-derives permissions mid-query.
package access

import (
	"net/http"

	"github.com/ayazaki/hakoba/internal/core/post"
	"github.com/ayazaki/hakoba/internal/platform/ctxutil"
	"github.com/ayazaki/hakoba/internal/platform/sec"
	"github.com/ayazaki/hakoba/pkg/query"
)

// For computes the visibility predicate for a requester.
//
// Policy:
//   - Guests and regular users see Safe and Sketchy content. Explicit content
//     requires an authenticated requester who opted in; anonymous requests
//     can never raise the ceiling.
//   - Moderators and admins see all ratings, and may additionally opt into
//     deleted posts for moderation queries. The flag is ignored for lower
//     tiers.
func For(perms sec.Perms, wantExplicit, wantDeleted bool) post.Visibility {
	switch perms {
	case sec.PermsModerator, sec.PermsAdmin:
		return post.Visibility{
			MaxRating:      post.RatingExplicit,
			IncludeDeleted: wantDeleted,
		}

	case sec.PermsUser:
		maxRating := post.RatingSketchy
		if wantExplicit {
			maxRating = post.RatingExplicit
		}
		return post.Visibility{MaxRating: maxRating}

	case sec.PermsGuest:
		return post.Visibility{MaxRating: post.RatingSketchy}

	default:
		// Unknown tiers get the most restrictive predicate.
		return post.Visibility{MaxRating: post.RatingSafe}
	}
}

// FromRequest derives the predicate for an HTTP request. The tier comes from
// the authenticated claims (Guest when anonymous); the deleted preference
// from the "deleted" query parameter. The explicit preference defaults to the
// account's stored setting carried in the claims, with the "explicit" query
// parameter overriding it either way when present.
func FromRequest(request *http.Request) post.Visibility {
	params := request.URL.Query()
	claims := ctxutil.GetAuthUser(request.Context())

	wantExplicit := claims != nil && claims.ShowExplicit
	if params.Has("explicit") {
		wantExplicit = query.Bool(params.Get("explicit"))
	}

	return For(
		ctxutil.Perms(request.Context()),
		wantExplicit,
		query.Bool(params.Get("deleted")),
	)
}
