package auth

// UserIdentity adapts a User into the Identity interface for token generation.
type UserIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

func (i UserIdentity) ID() string {
	return i.user.ID.String()
}

func (i UserIdentity) Name() string {
	return i.user.Name
}

func (i UserIdentity) Email() string {
	return i.user.Email
}

var _ Identity = UserIdentity{}
