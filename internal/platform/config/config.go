// Package config assembles the server's configuration from command-line
// flags and environment variables: flags for per-invocation overrides,
// environment variables for secrets and deployment-wide settings.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

// Env holds settings sourced from the environment, the ones a deployment
// sets once and every invocation inherits.
type Env struct {
	// PGConfig is a libpq connection string, used when --db isn't given.
	PGConfig string `env:"PG_CONFIG"`
	// LogColor switches the logger to its human-readable console writer.
	LogColor bool `env:"LOG_COLOR" envDefault:"false"`
	// AuthUser/AuthPass gate the optional Basic-auth wrap in front of the
	// static admin surface served via --serve. Both empty disables it.
	AuthUser string `env:"AUTH_USER"`
	AuthPass string `env:"AUTH_PASS"`
}

// Flags holds settings sourced from the command line, the ones that
// commonly vary between runs of the same deployment.
type Flags struct {
	Address string
	DB      string
	Serve   string
}

// Config is the fully resolved configuration Load produces.
type Config struct {
	Address  string
	DB       string
	Serve    string
	LogColor bool
	AuthUser string
	AuthPass string
}

// ParseFlags reads command-line flags from args (the caller passes
// os.Args[1:]; nil parses no arguments and yields the defaults).
func ParseFlags(args []string) (Flags, error) {
	fs := pflag.NewFlagSet("flumox-server", pflag.ContinueOnError)
	address := fs.String("address", "[::]:8000", "address to listen on")
	db := fs.String("db", "", "PostgreSQL connection string (overrides PG_CONFIG)")
	serve := fs.String("serve", "", "directory of static client files to serve, if any")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	return Flags{Address: *address, DB: *db, Serve: *serve}, nil
}

// Load resolves the complete Config from the given flags plus the
// process environment, applying --db over PG_CONFIG when both are set.
func Load(flags Flags) (Config, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}

	db := flags.DB
	if db == "" {
		db = e.PGConfig
	}
	if db == "" {
		return Config{}, fmt.Errorf("config: no database connection string given (set --db or PG_CONFIG)")
	}

	return Config{
		Address:  flags.Address,
		DB:       db,
		Serve:    flags.Serve,
		LogColor: e.LogColor,
		AuthUser: e.AuthUser,
		AuthPass: e.AuthPass,
	}, nil
}
