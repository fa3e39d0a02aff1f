package domain

// UserChanges describes a partial update applied to a stored user.
// Nil fields are left untouched. Email and username are lowercased
// before they reach the store.
type UserChanges struct {
	Name         *string
	Forename     *string
	Email        *string
	Username     *string
	Avatar       *string
	Role         *UserRole
	PasswordHash *string
}

// Empty reports whether the change set would touch nothing.
func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Forename == nil && c.Email == nil &&
		c.Username == nil && c.Avatar == nil && c.Role == nil && c.PasswordHash == nil
}
