package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/feedback/auth/password"
	"github.com/kbukum/feedback/identity"
)

func hashPasswordCmd() *cli.Command {
	return &cli.Command{
		Name:  "hash-password",
		Usage: "Print the digest of a password read from stdin",
		Flags: configFlags(),
		Action: func(c *cli.Context) error {
			sc := bufio.NewScanner(c.App.Reader)
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return err
				}
				return errors.New("missing password from stdin")
			}
			plain := strings.TrimSpace(sc.Text())
			if plain == "" {
				return errors.New("missing password from stdin")
			}

			cfg, err := loadConfig(c.String("config"), c.String("env"))
			if err != nil {
				return err
			}
			cfg.Auth.Password.ApplyDefaults()
			if err := cfg.Auth.Password.Validate(); err != nil {
				return err
			}

			digest, err := password.NewHasher(cfg.Auth.Password).Hash(plain)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, digest)
			return err
		},
	}
}

func issueTokenCmd() *cli.Command {
	return &cli.Command{
		Name:  "issue-token",
		Usage: "Sign a token with the configured secret",
		Flags: append(configFlags(),
			&cli.Int64Flag{Name: "id", Usage: "Account ID", Required: true},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Account username", Required: true},
			&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "admin, teacher or student", Required: true},
			&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime (default: auth.jwt.access_token_ttl)"},
		),
		Action: func(c *cli.Context) error {
			role, err := identity.ParseRole(c.String("role"))
			if err != nil {
				return err
			}
			if c.Int64("id") <= 0 {
				return errors.New("--id must be positive")
			}

			cfg, err := loadConfig(c.String("config"), c.String("env"))
			if err != nil {
				return err
			}
			codec, err := identity.NewCodec(cfg.Auth.JWT)
			if err != nil {
				return fmt.Errorf("token codec: %w", err)
			}

			token, err := codec.Issue(c.Int64("id"), c.String("username"), role, c.Duration("ttl"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, token)
			return err
		},
	}
}

func generateSecretCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate-secret",
		Usage: "Print a random signing secret for auth.jwt.secret",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "bytes", Value: 32, Usage: "Number of random bytes"},
		},
		Action: func(c *cli.Context) error {
			n := c.Int("bytes")
			if n < 16 {
				return errors.New("--bytes must be at least 16")
			}
			secret, err := password.GenerateToken(n)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, secret)
			return err
		},
	}
}
