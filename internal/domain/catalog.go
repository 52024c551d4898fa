package domain

// Destination is a catalog entry an event points at by id.
type Destination struct {
	ID   int64
	Name string
}

// Driver is a fleet driver available for leg assignment.
type Driver struct {
	ID    int64
	Name  string
	Phone string
}

// Vehicle is a fleet vehicle available for leg assignment.
type Vehicle struct {
	ID    int64
	Plate string
	Model string
}

// User is a person who can request trips or ride on them.
type User struct {
	ID         int64
	Nickname   string
	SocialName string
	FullName   string
	Email      string
}

// DisplayName returns the user's name by field priority.
func (u User) DisplayName() string {
	return DisplayName(NameFields{Nickname: u.Nickname, SocialName: u.SocialName, FullName: u.FullName})
}

// AsPassenger converts u into a non-owner roster entry.
func (u User) AsPassenger() Passenger {
	return Passenger{ID: u.ID, DisplayName: u.DisplayName(), Email: u.Email}
}

// Role is the viewer's privilege level.
type Role string

const (
	RoleRequester Role = "requester"
	RoleAdmin     Role = "admin"
)

// Viewer is the identity context of the caller.
type Viewer struct {
	ID   int64
	Name string
	Role Role
}

// IsAdmin reports whether the viewer has administrator privileges.
func (v Viewer) IsAdmin() bool { return v.Role == RoleAdmin }
