package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/config"
	"github.com/Diogovx/offboarding-console/internal/session"
)

var (
	signInUsername      string
	signInPasswordStdin bool
)

func registerSignInFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&signInUsername, "username", "u", "", "backend username")
	cmd.Flags().BoolVar(&signInPasswordStdin, "password-stdin", false, "read the password from stdin")
}

// operatorSession is a signed-in CLI run: the bound backend client plus the
// token holder that survives until the command ends.
type operatorSession struct {
	cfg   config.Config
	bound *backendapi.Bound
	store *session.Store
}

// signIn authenticates against the backend with the command's flags, prompting
// for missing credentials when attached to a terminal.
func signIn(ctx context.Context, cmd *cobra.Command) (*operatorSession, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{RequireBackendURL: true})
	if err != nil {
		return nil, err
	}

	client, err := backendapi.New(cfg.BackendBaseURL)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(signInUsername)
	if username == "" {
		username, err = promptLine(cmd, "Username: ")
		if err != nil {
			return nil, err
		}
	}
	if username == "" {
		return nil, errors.New("username is required (use --username)")
	}

	password, err := resolvePassword(cmd)
	if err != nil {
		return nil, err
	}

	token, err := client.Login(ctx, backendapi.Credentials{Username: username, Password: password})
	if err != nil {
		if errors.Is(err, backendapi.ErrInvalidCredentials) {
			return nil, &exitError{code: 1, err: errors.New("invalid username or password")}
		}
		return nil, err
	}

	store := session.NewStore()
	store.Set(session.Session{Token: token, DisplayName: username})
	return &operatorSession{cfg: cfg, bound: client.WithToken(token), store: store}, nil
}

// guard translates an expired backend token into a one-time sign-in hint; the
// first caller to see the 401 reports it, later ones stay quiet.
func (s *operatorSession) guard(cmd *cobra.Command, err error) error {
	if err == nil || !errors.Is(err, backendapi.ErrUnauthorized) {
		return err
	}
	if s.store.Invalidate() {
		cmd.PrintErrln("session expired, sign in again")
	}
	return &exitError{code: 1, err: err, silent: true}
}

func resolvePassword(cmd *cobra.Command) (string, error) {
	if signInPasswordStdin {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errors.New("password is empty")
		}
		password := strings.TrimRight(scanner.Text(), "\r\n")
		if password == "" {
			return "", errors.New("password is empty")
		}
		return password, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no password provided (use --password-stdin or run interactively)")
	}

	cmd.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", errors.New("password is empty")
	}
	return string(raw), nil
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", nil
	}
	cmd.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func formatServiceLine(system string, active bool) string {
	state := "inactive"
	if active {
		state = "ACTIVE"
	}
	return fmt.Sprintf("  %-12s %s", system, state)
}
