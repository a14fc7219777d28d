package main

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/J0263/book-api"
	"github.com/J0263/book-api/auth"
	"github.com/J0263/book-api/config"
)

func main() {
	opts := config.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	tokens, err := auth.NewTokenService(opts.SigningKey)
	if err != nil {
		logger.Fatal("AUTH_SIGNING_KEY must be set", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.MongoURI))
	if err != nil {
		logger.Fatal("cannot connect to mongodb", zap.Error(err))
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("cannot reach mongodb", zap.Error(err))
	}

	accounts := client.Database(opts.Database).Collection("accounts")
	if err := bookapi.EnsureAccountIndexes(ctx, accounts); err != nil {
		logger.Fatal("cannot create account indexes", zap.Error(err))
	}

	svc := bookapi.NewService(bookapi.NewMongoAccountRepository(accounts), tokens)

	router := httprouter.New()
	router.Handler(http.MethodPost, "/v1/accounts", bookapi.RegisterAccountHandler(svc))
	router.Handler(http.MethodPost, "/v1/sessions", bookapi.LoginHandler(svc))
	router.Handler(http.MethodGet, "/v1/me", tokens.RequireAuth(bookapi.MeHandler(svc)))
	router.Handler(http.MethodPost, "/v1/books", tokens.RequireAuth(bookapi.SaveBookHandler(svc)))
	router.Handler(http.MethodDelete, "/v1/books/:bookId", tokens.RequireAuth(bookapi.RemoveBookHandler(svc)))
	router.Handler(http.MethodPatch, "/v1/accounts/password", tokens.RequireAuth(bookapi.ChangePasswordHandler(svc)))

	logger.Info("server started", zap.String("addr", opts.Addr))
	logger.Fatal("server stopped", zap.Error(http.ListenAndServe(opts.Addr, bookapi.LoggingMiddleware(logger, router))))
}
