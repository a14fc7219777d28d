//Package bookapi implements accounts with per-account saved book
// lists: registration, credential validation and the identity-scoped
// book mutations.
package bookapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/J0263/book-api/auth"
)

type Service interface {
	RegisterAccount(req registerAccountRequest) (*AuthPayload, error)
	Login(req loginRequest) (*AuthPayload, error)
	GetAccount(identity auth.Identity) (*Account, error)
	SaveBook(identity auth.Identity, req saveBookRequest) (*Account, error)
	RemoveBook(identity auth.Identity, bookID string) (*Account, error)
	ChangePassword(identity auth.Identity, req changePasswordRequest) error
}

type service struct {
	accounts Repository
	tokens   *auth.TokenService
}

func NewService(accounts Repository, tokens *auth.TokenService) Service {
	return &service{accounts: accounts, tokens: tokens}
}

// AuthPayload is returned by RegisterAccount and Login.
type AuthPayload struct {
	Token   string
	Account *Account
}

type registerAccountRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (svc *service) RegisterAccount(req registerAccountRequest) (*AuthPayload, error) {
	acc, err := NewAccount(req.Username, req.Email)
	if err != nil {
		return nil, err
	}

	if len(req.Password) < 8 {
		return nil, ErrInvalidPassword
	}

	if err := svc.verifyNotInUse(req.Username, req.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	acc.ID = nextID()
	acc.password = hash
	acc.CreatedAt = time.Now().UTC()

	// The store's unique constraints have the last word; Store maps a
	// losing race onto the same conflict errors as the check above.
	if err := svc.accounts.Store(acc); err != nil {
		return nil, err
	}

	return svc.authPayload(acc)
}

func (svc *service) Login(req loginRequest) (*AuthPayload, error) {
	acc, err := svc.accounts.FindByEmail(req.Email)
	if errors.Is(err, ErrNotFound) {
		// Indistinguishable from a wrong password so login failures
		// cannot be used to probe which emails are registered.
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPasswordHash(acc.password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return svc.authPayload(acc)
}

func (svc *service) GetAccount(identity auth.Identity) (*Account, error) {
	if identity.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	return svc.accounts.FindByID(ID(identity.AccountID))
}

func (svc *service) SaveBook(identity auth.Identity, req saveBookRequest) (*Account, error) {
	if identity.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	book, err := NewSavedBook(req)
	if err != nil {
		return nil, err
	}

	// The target account comes from the verified identity, never from
	// the request payload.
	return svc.accounts.AddBook(ID(identity.AccountID), book)
}

func (svc *service) RemoveBook(identity auth.Identity, bookID string) (*Account, error) {
	if identity.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	return svc.accounts.RemoveBook(ID(identity.AccountID), bookID)
}

func (svc *service) ChangePassword(identity auth.Identity, req changePasswordRequest) error {
	if identity.IsAnonymous() {
		return ErrUnauthorized
	}

	acc, err := svc.accounts.FindByID(ID(identity.AccountID))
	if err != nil {
		return err
	}

	if !auth.CheckPasswordHash(acc.password, req.OldPassword) {
		return ErrInvalidCredentials
	}

	if len(req.NewPassword) < 8 {
		return ErrInvalidPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	// UpdatePassword is the only write that touches the stored hash,
	// so unrelated updates can never re-hash a stale value.
	return svc.accounts.UpdatePassword(acc.ID, hash)
}

func (svc *service) verifyNotInUse(username string, email string) error {
	if acc, err := svc.accounts.FindByName(username); acc != nil && err == nil {
		return ErrExistingUsername
	}

	if acc, err := svc.accounts.FindByEmail(email); acc != nil && err == nil {
		return ErrExistingEmail
	}

	return nil
}

func (svc *service) authPayload(acc *Account) (*AuthPayload, error) {
	token, err := svc.tokens.Sign(string(acc.ID), acc.Username, acc.Email)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}
	return &AuthPayload{Token: token, Account: acc}, nil
}
