package service

// Principal identifies the caller of a service operation.
type Principal struct {
	UserID   int64
	Username string
	Email    string
	IsStaff  bool
}

// Authenticated reports whether the principal names a user.
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}
