package models

// Offering is one entry of the services list.
type Offering struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	PriceFrom   string `yaml:"price_from"`
}

// Catalog is the static copy of the informational sections.
type Catalog struct {
	ChefName  string     `yaml:"chef_name"`
	Tagline   string     `yaml:"tagline"`
	Intro     string     `yaml:"intro"`
	About     []string   `yaml:"about"`
	Offerings []Offering `yaml:"offerings"`
	Email     string     `yaml:"email"`
	Phone     string     `yaml:"phone"`
	Area      string     `yaml:"area"`
}

// DefaultCatalog is used when no catalog file is configured.
func DefaultCatalog() Catalog {
	return Catalog{
		ChefName: "Private Chef",
		Tagline:  "Seasonal menus cooked in your kitchen",
		Intro:    "Private dinners, catering and cooking classes tailored to you and your guests.",
		About: []string{
			"Every menu is written for the occasion, the season and the people at the table.",
		},
		Offerings: []Offering{
			{Title: "Private Dinner", Description: "A multi-course dinner served at your home."},
			{Title: "Catering", Description: "Menus for celebrations and corporate events."},
			{Title: "Cooking Class", Description: "Hands-on lessons for small groups."},
		},
	}
}
