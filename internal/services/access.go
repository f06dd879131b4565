package services

import "github.com/postboard/apiserver/types"

// RequireAdmin gates post mutations on the admin flag.
func RequireAdmin(user types.User) error {
	if !user.IsAdmin {
		return ErrForbidden
	}
	return nil
}
