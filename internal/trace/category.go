package trace

type (
	// Category classifies the kind of work a stack was performing.
	// Subcategories[0] is always the catch-all "Other" entry.
	Category struct {
		Name          string   `json:"name"`
		Color         string   `json:"color"`
		Subcategories []string `json:"subcategories"`
	}

	CategoryList []Category
)

// DefaultCategories is the classification used when a trace does not carry
// its own category list.
var DefaultCategories = CategoryList{
	{Name: "Other", Color: "grey", Subcategories: []string{"Other"}},
	{Name: "Idle", Color: "transparent", Subcategories: []string{"Other"}},
	{Name: "Layout", Color: "purple", Subcategories: []string{"Other"}},
	{Name: "JavaScript", Color: "yellow", Subcategories: []string{"Other"}},
	{Name: "GC / CC", Color: "orange", Subcategories: []string{"Other"}},
	{Name: "Network", Color: "lightblue", Subcategories: []string{"Other"}},
	{Name: "Graphics", Color: "green", Subcategories: []string{"Other"}},
	{Name: "DOM", Color: "blue", Subcategories: []string{"Other"}},
}

// DefaultCategory returns the index of the catch-all category, used when a
// call node collapses stacks whose categories disagree.
func (cl CategoryList) DefaultCategory() int {
	for i, c := range cl {
		if c.Name == "Other" {
			return i
		}
	}
	return 0
}
