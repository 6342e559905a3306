package domain

// Principal is the authenticated identity attached to a request.
// It is built once by the identity middleware and is immutable afterwards.
type Principal struct {
	UserID   string
	Username string
	Email    string
	IsAdmin  bool
	Groups   []string
}

// Identity is the raw identity asserted by an identity source, before the
// durable user record has been resolved. The upstream proxy (or a local
// strategy) vouches for it; nothing is verified cryptographically here.
type Identity struct {
	Username string
	Email    string
	FullName string
	Groups   []string
}

// Validate checks that the identity carries the required fields.
func (id *Identity) Validate() error {
	if id.Username == "" {
		return ErrUnauthenticated("identity is missing a username")
	}
	if id.Email == "" {
		return ErrUnauthenticated("identity is missing an email")
	}
	return nil
}
