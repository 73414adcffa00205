package domain

// Card is an immutable catalog record describing one card design.
// The catalog is seeded externally; this core only reads it.
type Card struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SetName    string `json:"set_name"`
	Number     string `json:"number"`
	Rarity     string `json:"rarity"`
	ImageURL   string `json:"image_url"`
	Type       string `json:"type"`
	HP         int    `json:"hp"`
	Weaknesses string `json:"weaknesses"`
	Retreat    int    `json:"retreat"`
}

// CardFilter contains search parameters shared by the catalog search and
// binder-content listing. Empty fields contribute no predicate.
type CardFilter struct {
	// Query matches case-insensitively against name, number and set_name
	// as a single OR group.
	Query  string
	Type   string
	Rarity string
	Set    string
}

// IsZero reports whether no filter field is set.
func (f CardFilter) IsZero() bool {
	return f.Query == "" && f.Type == "" && f.Rarity == "" && f.Set == ""
}

// Sort directives for binder-content listing.
const (
	SortByName   = "name"
	SortByRecent = "recent"
	SortByRarity = "rarity"

	SortAsc  = "asc"
	SortDesc = "desc"
)
