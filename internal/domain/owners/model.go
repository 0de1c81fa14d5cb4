package owners

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Owner es la cuenta de usuario que adopta mascotas y tiene saldo de coins.
// Invariante: Coins >= 0.
type Owner struct {
	ID    string
	Role  Role
	Coins int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (o Owner) IsAdmin() bool {
	return o.Role == RoleAdmin
}
