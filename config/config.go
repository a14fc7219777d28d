// Package config provides process configuration from command-line
// flags and environment variables. Values are fixed at startup; there
// is no runtime mutation.
package config

import (
	"flag"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr is the server's listen address.
	Addr string

	// MongoURI is the mongodb connection string.
	MongoURI string

	// Database is the mongodb database name.
	Database string

	// SigningKey signs identity tokens. Empty is a fatal startup error.
	SigningKey string
}

var options = &Options{}

func init() {
	flag.StringVar(&options.Addr, "a", ":8090", "listen address")
	flag.StringVar(&options.MongoURI, "m", "mongodb://127.0.0.1:27017", "mongodb connection uri")
	flag.StringVar(&options.Database, "db", "bookapi", "mongodb database name")
}

// Parse parses the command-line flags and environment overrides and
// returns the resulting options. The signing key comes from the
// environment only, so it never shows up in process listings.
func Parse() *Options {
	flag.Parse()

	if addr := os.Getenv("ADDR"); addr != "" {
		options.Addr = addr
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		options.MongoURI = uri
	}
	if db := os.Getenv("MONGO_DB"); db != "" {
		options.Database = db
	}
	options.SigningKey = os.Getenv("AUTH_SIGNING_KEY")

	return options
}
