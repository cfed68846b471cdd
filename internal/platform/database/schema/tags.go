package schema

// TagTable represents the 'tags' table
type TagTable struct {
	Table      string
	ID         string
	Name       string
	Type       string
	Count      string
	CreateDate string
}

// Tag is the schema definition for tags
var Tag = TagTable{
	Table:      "tags",
	ID:         "id",
	Name:       "name",
	Type:       "type",
	Count:      "count",
	CreateDate: "create_date",
}

func (t TagTable) Columns() []string {
	return []string{t.ID, t.Name, t.Type, t.Count, t.CreateDate}
}
