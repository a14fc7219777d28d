package bookapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/J0263/book-api/auth"
)

type accountResponse struct {
	ID         ID          `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	BookCount  int         `json:"bookCount"`
	SavedBooks []SavedBook `json:"savedBooks"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Account accountResponse `json:"account"`
}

func RegisterAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		req, err := decodeRegisterAccountRequest(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		payload, err := svc.RegisterAccount(req)
		if err != nil {
			encodeError(err, w)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, payload.Account.ID))
		w.WriteHeader(http.StatusCreated)
		encodeAuthPayload(payload, w)
	})
}

func LoginHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		req, err := decodeLoginRequest(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		payload, err := svc.Login(req)
		if err != nil {
			encodeError(err, w)
			return
		}

		encodeAuthPayload(payload, w)
	})
}

func MeHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		acc, err := svc.GetAccount(auth.IdentityFromContext(r.Context()))
		if err != nil {
			encodeError(err, w)
			return
		}

		_ = json.NewEncoder(w).Encode(accountResponseFrom(acc))
	})
}

func SaveBookHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		req, err := decodeSaveBookRequest(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		acc, err := svc.SaveBook(auth.IdentityFromContext(r.Context()), req)
		if err != nil {
			encodeError(err, w)
			return
		}

		_ = json.NewEncoder(w).Encode(accountResponseFrom(acc))
	})
}

func RemoveBookHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		bookID := httprouter.ParamsFromContext(r.Context()).ByName("bookId")

		acc, err := svc.RemoveBook(auth.IdentityFromContext(r.Context()), bookID)
		if err != nil {
			encodeError(err, w)
			return
		}

		_ = json.NewEncoder(w).Encode(accountResponseFrom(acc))
	})
}

func ChangePasswordHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeChangePasswordRequest(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := svc.ChangePassword(auth.IdentityFromContext(r.Context()), req); err != nil {
			w.Header().Set("Content-Type", "application/json")
			encodeError(err, w)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func encodeError(err error, w http.ResponseWriter) {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrExistingUsername), errors.Is(err, ErrExistingEmail):
		w.WriteHeader(http.StatusConflict)
	case errors.As(err, &ve),
		errors.Is(err, ErrInvalidUsername),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidPassword):
		w.WriteHeader(http.StatusUnprocessableEntity)
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken):
		w.WriteHeader(http.StatusUnauthorized)
	case errors.Is(err, ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, ErrStoreUnavailable):
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

func encodeAuthPayload(payload *AuthPayload, w http.ResponseWriter) {
	_ = json.NewEncoder(w).Encode(authResponse{
		Token:   payload.Token,
		Account: accountResponseFrom(payload.Account),
	})
}

func accountResponseFrom(acc *Account) accountResponse {
	books := acc.SavedBooks
	if books == nil {
		books = []SavedBook{}
	}
	return accountResponse{
		ID:         acc.ID,
		Username:   acc.Username,
		Email:      acc.Email,
		BookCount:  acc.BookCount(),
		SavedBooks: books,
	}
}

func decodeRegisterAccountRequest(body io.Reader) (registerAccountRequest, error) {
	req := registerAccountRequest{}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return registerAccountRequest{}, err
	}
	return req, nil
}

func decodeLoginRequest(body io.Reader) (loginRequest, error) {
	req := loginRequest{}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return loginRequest{}, err
	}
	return req, nil
}

func decodeSaveBookRequest(body io.Reader) (saveBookRequest, error) {
	req := saveBookRequest{}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return saveBookRequest{}, err
	}
	return req, nil
}

func decodeChangePasswordRequest(body io.Reader) (changePasswordRequest, error) {
	req := changePasswordRequest{}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return changePasswordRequest{}, err
	}
	return req, nil
}
