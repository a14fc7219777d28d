package bookapi

import "strings"

// SavedBook is always owned by exactly one account. BookID is the
// external catalog identifier and the dedup key within savedBooks.
type SavedBook struct {
	BookID      string   `json:"bookId" bson:"bookId"`
	Title       string   `json:"title" bson:"title"`
	Authors     []string `json:"authors" bson:"authors"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Image       string   `json:"image,omitempty" bson:"image,omitempty"`
	Link        string   `json:"link,omitempty" bson:"link,omitempty"`
}

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

type saveBookRequest struct {
	BookID      string   `json:"bookId"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Link        string   `json:"link"`
}

// NewSavedBook normalizes an externally sourced book payload. BookID
// and title are required; an empty author list becomes the "No author"
// placeholder; optional fields pass through unchanged.
func NewSavedBook(req saveBookRequest) (SavedBook, error) {
	var missing []string
	if strings.TrimSpace(req.BookID) == "" {
		missing = append(missing, "bookId")
	}
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return SavedBook{}, &ValidationError{Fields: missing}
	}

	authors := req.Authors
	if len(authors) == 0 {
		authors = []string{"No author"}
	}

	return SavedBook{
		BookID:      req.BookID,
		Title:       req.Title,
		Authors:     authors,
		Description: req.Description,
		Image:       req.Image,
		Link:        req.Link,
	}, nil
}
