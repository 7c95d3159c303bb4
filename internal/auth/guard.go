// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import "github.com/samber/oops"

// AuthorizeMutation decides whether the acting principal may mutate a
// resource recorded as owned by ownerID. Pure single-owner comparison; there
// is no role or admin override in the current scope.
func AuthorizeMutation(ownerID int64, principal *Account) error {
	if principal == nil {
		return oops.Code("AUTH_UNAUTHORIZED").Errorf("no authenticated account")
	}
	if principal.ID != ownerID {
		return oops.Code("AUTH_FORBIDDEN").
			With("owner_id", ownerID).
			With("principal_id", principal.ID).
			Errorf("you are not the owner of this resource")
	}
	return nil
}
