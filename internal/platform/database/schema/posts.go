package schema

// PostTable represents the 'posts' table
type PostTable struct {
	Table        string
	ID           string
	Poster       string
	Description  string
	Source       string
	Rating       string
	Tags         string
	TagVector    string
	Score        string
	Views        string
	IsDeleted    string
	Version      string
	Filename     string
	Path         string
	Ext          string
	Size         string
	Width        string
	Height       string
	CreateDate   string
	ModifiedDate string
}

// Post is the schema definition for posts
var Post = PostTable{
	Table:        "posts",
	ID:           "id",
	Poster:       "poster",
	Description:  "description",
	Source:       "source",
	Rating:       "rating",
	Tags:         "tags",
	TagVector:    "tag_vector",
	Score:        "score",
	Views:        "views",
	IsDeleted:    "is_deleted",
	Version:      "version",
	Filename:     "filename",
	Path:         "path",
	Ext:          "ext",
	Size:         "size",
	Width:        "width",
	Height:       "height",
	CreateDate:   "create_date",
	ModifiedDate: "modified_date",
}

func (t PostTable) Columns() []string {
	return []string{
		t.ID, t.Poster, t.Description, t.Source, t.Rating, t.Tags, t.Score,
		t.Views, t.IsDeleted, t.Version, t.Filename, t.Path, t.Ext, t.Size,
		t.Width, t.Height, t.CreateDate, t.ModifiedDate,
	}
}
