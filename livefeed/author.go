package livefeed

// Author identifies who is posting: a registered user or a guest. The two
// arms are mutually exclusive and every consumer switches over both.
type Author interface {
	isAuthor()
}

// Registered is the author arm for a signed-in user.
type Registered struct {
	UserID string
}

func (Registered) isAuthor() {}

// Guest is the author arm for an anonymous visitor. Chat requires only a
// display name; comments additionally require an email.
type Guest struct {
	Name  string
	Email string
}

func (Guest) isAuthor() {}

// DisplayName returns the name shown next to posts by this author.
func DisplayName(a Author) string {
	switch v := a.(type) {
	case Registered:
		return "User"
	case Guest:
		if v.Name == "" {
			return "Anonymous"
		}
		return v.Name
	}
	return "Anonymous"
}
