package models

// Role is the closed set of roles the settings routes understand.
// Users with any other stored role are treated as RoleClient.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleFilial Role = "filial"
	RoleClient Role = "client"
)

// Roles lists every declared role. The resolver must handle each of them.
var Roles = []Role{RoleAdmin, RoleFilial, RoleClient}

// Normalize maps unknown or empty role values onto RoleClient.
func (r Role) Normalize() Role {
	switch r {
	case RoleAdmin, RoleFilial:
		return r
	default:
		return RoleClient
	}
}

// User is owned by the accounts service; this slice only reads it.
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Phone          string `gorm:"size:50;index" json:"phone"`
	Role           Role   `gorm:"size:20;not null;default:client" json:"role"`
	SelectedFilial string `gorm:"size:255" json:"selectedFilial"` // filialText of the chosen branch
}
