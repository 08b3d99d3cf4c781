package openlibrary

// Raw API response types (internal)

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	Publisher        []string `json:"publisher"`
	FirstPublishYear int      `json:"first_publish_year"`
	Language         []string `json:"language"`
	ISBN             []string `json:"isbn"`
	CoverID          int64    `json:"cover_i"`
}

type edition struct {
	Key         string        `json:"key"`
	Title       string        `json:"title"`
	Publishers  []string      `json:"publishers"`
	PublishDate string        `json:"publish_date"`
	ISBN10      []string      `json:"isbn_10"`
	ISBN13      []string      `json:"isbn_13"`
	Covers      []int64       `json:"covers"`
	Languages   []languageRef `json:"languages"`
	Authors     []authorRef   `json:"authors"`
}

type languageRef struct {
	Key string `json:"key"` // "/languages/eng"
}

type authorRef struct {
	Key string `json:"key"` // "/authors/OL123A"
}
