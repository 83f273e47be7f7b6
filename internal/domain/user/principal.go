package user

// Principal is the identity a verified bearer token resolves to.
type Principal struct {
	UserID string
	Name   string
	Role   string
	Admin  bool
}
