// Command token mints a bearer token for the event API, signed with the
// server's JWT_SECRET. It is meant for operators and local development.
//
//	token --user 1 --name Ana
//	token --user 100 --name Carla --role admin --ttl 8h
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/cgfarias/mobifacil-front-sub000/internal/auth"
	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		secret string
		v      domain.Viewer
		role   string
		ttl    time.Duration
	)
	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "signing secret (default $JWT_SECRET)")
	fs.Int64Var(&v.ID, "user", 0, "user id the token is issued to")
	fs.StringVar(&v.Name, "name", "", "display name carried in the token")
	fs.StringVar(&role, "role", string(domain.RoleRequester), "requester or admin")
	fs.DurationVar(&ttl, "ttl", 24*time.Hour, "lifetime; 0 issues a token that never expires")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if secret == "" {
		return errors.New("--secret or JWT_SECRET is required")
	}
	if v.ID <= 0 {
		return errors.New("--user must be a positive id")
	}
	switch v.Role = domain.Role(role); v.Role {
	case domain.RoleRequester, domain.RoleAdmin:
	default:
		return fmt.Errorf("--role: unknown role %q", role)
	}
	if ttl < 0 {
		return errors.New("--ttl must not be negative")
	}

	token, err := auth.NewSigner(secret, ttl).Issue(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}
