package bookapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"

	"github.com/J0263/book-api/auth"
)

type serviceStub struct {
	payload *AuthPayload
	account *Account
	err     error

	registerReq    registerAccountRequest
	loginReq       loginRequest
	saveIdentity   auth.Identity
	saveReq        saveBookRequest
	removeIdentity auth.Identity
	removedBookID  string
}

func (s *serviceStub) RegisterAccount(req registerAccountRequest) (*AuthPayload, error) {
	s.registerReq = req
	return s.payload, s.err
}

func (s *serviceStub) Login(req loginRequest) (*AuthPayload, error) {
	s.loginReq = req
	return s.payload, s.err
}

func (s *serviceStub) GetAccount(identity auth.Identity) (*Account, error) {
	return s.account, s.err
}

func (s *serviceStub) SaveBook(identity auth.Identity, req saveBookRequest) (*Account, error) {
	s.saveIdentity = identity
	s.saveReq = req
	return s.account, s.err
}

func (s *serviceStub) RemoveBook(identity auth.Identity, bookID string) (*Account, error) {
	s.removeIdentity = identity
	s.removedBookID = bookID
	return s.account, s.err
}

func (s *serviceStub) ChangePassword(identity auth.Identity, req changePasswordRequest) error {
	return s.err
}

func stubAccount() *Account {
	return &Account{
		ID:       "bkt0idbltpu0n87bp11g",
		Username: "alice",
		Email:    "alice@x.com",
		password: "$2a$10$secret",
		SavedBooks: []SavedBook{
			{BookID: "B1", Title: "Foo", Authors: []string{"No author"}},
		},
	}
}

func TestRegisterAccountHandler(t *testing.T) {
	acc := stubAccount()
	svc := &serviceStub{payload: &AuthPayload{Token: "t0ken", Account: acc}}

	body := `{"username":"alice","email":"alice@x.com","password":"password1"}`
	r := httptest.NewRequest(http.MethodPost, "/v1/accounts", strings.NewReader(body))
	w := httptest.NewRecorder()

	RegisterAccountHandler(svc).ServeHTTP(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "/v1/accounts/"+string(acc.ID), w.Header().Get("Location"))
	assert.Equal(t, registerAccountRequest{"alice", "alice@x.com", "password1"}, svc.registerReq)

	var res authResponse
	assert.Nil(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, "t0ken", res.Token)
	assert.Equal(t, acc.ID, res.Account.ID)
	assert.Equal(t, 1, res.Account.BookCount)
}

func TestRegisterAccountHandler_BadRequestBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/accounts", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	RegisterAccountHandler(&serviceStub{}).ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginHandler(t *testing.T) {
	svc := &serviceStub{payload: &AuthPayload{Token: "t0ken", Account: stubAccount()}}

	body := `{"email":"alice@x.com","password":"password1"}`
	r := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	w := httptest.NewRecorder()

	LoginHandler(svc).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, loginRequest{Email: "alice@x.com", Password: "password1"}, svc.loginReq)

	var res authResponse
	assert.Nil(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, "t0ken", res.Token)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	svc := &serviceStub{err: ErrInvalidCredentials}

	body := `{"email":"alice@x.com","password":"wrong"}`
	r := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	w := httptest.NewRecorder()

	LoginHandler(svc).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeHandler_NeverExposesPasswordHash(t *testing.T) {
	svc := &serviceStub{account: stubAccount()}

	r := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	w := httptest.NewRecorder()

	MeHandler(svc).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Contains(t, w.Body.String(), `"bookCount":1`)
}

func TestSaveBookHandler_PassesIdentityFromContext(t *testing.T) {
	svc := &serviceStub{account: stubAccount()}
	identity := auth.Identity{AccountID: "id1", Username: "alice", Email: "alice@x.com"}

	body := `{"bookId":"B1","title":"Foo"}`
	r := httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(body))
	r = r.WithContext(auth.NewContext(r.Context(), identity))
	w := httptest.NewRecorder()

	SaveBookHandler(svc).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, identity, svc.saveIdentity)
	assert.Equal(t, saveBookRequest{BookID: "B1", Title: "Foo"}, svc.saveReq)
}

func TestRemoveBookHandler_TakesBookIDFromPath(t *testing.T) {
	svc := &serviceStub{account: stubAccount()}
	identity := auth.Identity{AccountID: "id1"}

	router := httprouter.New()
	router.Handler(http.MethodDelete, "/v1/books/:bookId", RemoveBookHandler(svc))

	r := httptest.NewRequest(http.MethodDelete, "/v1/books/B1", nil)
	r = r.WithContext(auth.NewContext(r.Context(), identity))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "B1", svc.removedBookID)
	assert.Equal(t, identity, svc.removeIdentity)
}

func TestChangePasswordHandler(t *testing.T) {
	svc := &serviceStub{}

	body := `{"oldPassword":"password1","newPassword":"password2"}`
	r := httptest.NewRequest(http.MethodPatch, "/v1/accounts/password", strings.NewReader(body))
	w := httptest.NewRecorder()

	ChangePasswordHandler(svc).ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEncodeError(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
	}{
		{ErrExistingUsername, http.StatusConflict},
		{ErrExistingEmail, http.StatusConflict},
		{ErrInvalidUsername, http.StatusUnprocessableEntity},
		{ErrInvalidEmail, http.StatusUnprocessableEntity},
		{ErrInvalidPassword, http.StatusUnprocessableEntity},
		{&ValidationError{Fields: []string{"bookId"}}, http.StatusUnprocessableEntity},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrUnauthorized, http.StatusUnauthorized},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: connection reset", ErrStoreUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d %s", tt.wantCode, tt.err), func(t *testing.T) {
			w := httptest.NewRecorder()

			encodeError(tt.err, w)

			var body map[string]string
			assert.Nil(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}
