package types

import "time"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Created      time.Time `json:"created_at"`
}

// PublicUser is the view of a user that goes over the wire. It never
// carries the password hash.
type PublicUser struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Friends []Friend `json:"friends"`
}

type Friend struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type List struct {
	ID        int        `json:"id"`
	OwnerID   int        `json:"owner_id"`
	OwnerName string     `json:"owner_name,omitempty"`
	Name      string     `json:"name"`
	Default   bool       `json:"is_default"`
	ItemCount int        `json:"item_count"`
	Items     []ListItem `json:"items,omitempty"`
	SharedIDs []int      `json:"shared_with,omitempty"`
	Created   time.Time  `json:"created_at"`
	Updated   time.Time  `json:"updated_at"`
}

// ListItem is a catalog entry embedded in a list. TMDBID is the external
// catalog identifier; no two items in the same list share one.
type ListItem struct {
	TMDBID    int       `json:"tmdbId"`
	Title     string    `json:"title"`
	PosterURL string    `json:"poster,omitempty"`
	Year      string    `json:"year,omitempty"`
	Genre     string    `json:"genre,omitempty"`
	MediaType string    `json:"type"`
	Added     time.Time `json:"added_at"`
}

// CatalogItem is the gateway's reshaped view of an upstream TMDB result.
type CatalogItem struct {
	TMDBID      int     `json:"tmdbId"`
	Title       string  `json:"title"`
	Year        string  `json:"year"`
	PosterURL   string  `json:"poster"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	MediaType   string  `json:"type"`
}

type CatalogPage struct {
	Results     []CatalogItem `json:"results"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Request bodies

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddFriendRequest struct {
	Email string `json:"email"`
}

type CreateListRequest struct {
	Name string `json:"name"`
}

type UpdateListRequest struct {
	Name string `json:"name"`
}

type AddMovieRequest struct {
	TMDBID    int    `json:"tmdbId"`
	Title     string `json:"title"`
	PosterURL string `json:"poster"`
	Year      string `json:"year"`
	Genre     string `json:"genre"`
	MediaType string `json:"type"`
}

type ShareListRequest struct {
	FriendID int `json:"friendId"`
}
