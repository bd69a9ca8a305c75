package models

import "time"

const (
	RoleUser      = "USER"
	RoleAdmin     = "ADMIN"
	RoleDeveloper = "DEVELOPER"
)

type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// CanCreateMovies reports whether the user's role unlocks movie creation.
// Purely a UI gate, the backend re-checks on every request.
func (u User) CanCreateMovies() bool {
	return u.Role == RoleAdmin || u.Role == RoleDeveloper
}

// Session is the authenticated identity held by the client process.
type Session struct {
	Token string
	User  User
}

type Review struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Rating    int       `json:"rating"` // 1..5 stars
	User      User      `json:"user"`
	ImdbID    string    `json:"imdbId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Movie struct {
	ID           string        `json:"id"`
	ImdbID       string        `json:"imdbId"`
	Title        string        `json:"title"`
	ReleaseDate  string        `json:"releaseDate"`
	TrailerLink  string        `json:"trailerLink,omitempty"`
	Genres       []string      `json:"genres,omitempty"`
	Poster       string        `json:"poster,omitempty"`
	Backdrops    []string      `json:"backdrops,omitempty"`
	ReviewIDs    []string      `json:"reviewIds,omitempty"`
	OTTPlatforms []OTTPlatform `json:"ottPlatforms,omitempty"`
}

type OTTPlatform struct {
	Name string `json:"name"`
	Link string `json:"link"`
}
