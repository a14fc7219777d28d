package bookapi

import (
	"errors"
	"regexp"
	"time"

	"github.com/rs/xid"
)

type ID string

// Repository is the contract the account service needs from the
// credential store. AddBook and RemoveBook are single atomic updates;
// the service never reads an account and writes it back.
type Repository interface {
	FindByID(id ID) (*Account, error)
	FindByName(username string) (*Account, error)
	FindByEmail(email string) (*Account, error)
	Store(acc *Account) error
	AddBook(id ID, book SavedBook) (*Account, error)
	RemoveBook(id ID, bookID string) (*Account, error)
	UpdatePassword(id ID, hash string) error
}

type Account struct {
	ID         ID
	Username   string
	Email      string
	password   string
	CreatedAt  time.Time
	SavedBooks []SavedBook
}

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrExistingUsername   = errors.New("username in use")
	ErrExistingEmail      = errors.New("email in use")
	ErrInvalidCredentials = errors.New("incorrect credentials")
	ErrNotFound           = errors.New("account not found")
	ErrUnauthorized       = errors.New("you must be logged in")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

var (
	usernameRegexp = regexp.MustCompile(`^\w{1,24}$`)
	emailRegexp    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

//NewAccount validates username and email and returns a new Account
// with no saved books if the arguments are valid
func NewAccount(username string, email string) (*Account, error) {
	if !usernameRegexp.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	if !emailRegexp.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	return &Account{Username: username, Email: email, SavedBooks: []SavedBook{}}, nil
}

func (a *Account) HasBook(bookID string) bool {
	for _, b := range a.SavedBooks {
		if b.BookID == bookID {
			return true
		}
	}

	return false
}

func (a *Account) BookCount() int {
	return len(a.SavedBooks)
}

func nextID() ID {
	return ID(xid.New().String())
}

//IsValidID checks if a given id is valid based on the xid library definition of a valid id
// this method should change if we ever change our uid generation library
func IsValidID(id string) bool {
	if _, err := xid.FromString(id); err != nil {
		return false
	}
	return true
}
