package views

// Page carries per-page head and navigation data into the layout.
type Page struct {
	SiteName    string
	Locale      string
	Locales     []string // supported locales, switcher order
	Title       string
	Description string
	Canonical   string // absolute URL
	Alternates  []Alternate
}

// Alternate is a translated version of the current page.
type Alternate struct {
	Locale string
	Href   string // absolute URL
}

// LanguageLink is one entry of the locale switcher.
type LanguageLink struct {
	Locale string
	Label  string
	Href   string
	Active bool
}
