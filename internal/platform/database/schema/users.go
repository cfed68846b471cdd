package schema

// UserTable represents the 'users' table
type UserTable struct {
	Table        string
	ID           string
	Name         string
	Email        string
	PassHash     string
	Picture      string
	Perms        string
	ShowExplicit string
	CreateDate   string
	ModifiedDate string
}

// User is the schema definition for users
var User = UserTable{
	Table:        "users",
	ID:           "id",
	Name:         "name",
	Email:        "email",
	PassHash:     "pass_hash",
	Picture:      "picture",
	Perms:        "perms",
	ShowExplicit: "show_explicit",
	CreateDate:   "create_date",
	ModifiedDate: "modified_date",
}

func (t UserTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Email, t.PassHash, t.Picture, t.Perms,
		t.ShowExplicit, t.CreateDate, t.ModifiedDate,
	}
}
