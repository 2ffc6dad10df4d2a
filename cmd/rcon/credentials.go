package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/term"
)

const opTimeout = 30 * time.Second

// CredentialError reports a failure to retrieve a password from
// 1Password. Propagated unchanged; never swallowed.
type CredentialError struct {
	Msg string
	Err error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return "credentials: " + e.Msg + ": " + e.Err.Error()
	}
	return "credentials: " + e.Msg
}

func (e *CredentialError) Unwrap() error { return e.Err }

// lookupPassword fetches a password from 1Password via the op CLI.
func lookupPassword(ref CredentialRef) (string, error) {
	opPath, err := exec.LookPath("op")
	if err != nil {
		return "", &CredentialError{Msg: "1Password CLI (op) is not installed or not in PATH", Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, opPath,
		"item", "get", ref.Item,
		"--vault", ref.Vault,
		"--fields", "label="+ref.Field,
		"--reveal",
	)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &CredentialError{Msg: "1Password CLI timed out; is the session active?", Err: err}
		}
		msg := "failed to retrieve password from 1Password"
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			msg += ": " + strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", &CredentialError{Msg: msg, Err: err}
	}

	password := strings.TrimSpace(string(out))
	if password == "" {
		return "", &CredentialError{
			Msg: fmt.Sprintf("empty password retrieved from 1Password (vault=%s, item=%s)", ref.Vault, ref.Item),
		}
	}
	return password, nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(server string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", &CredentialError{Msg: "no password given and stdin is not a terminal"}
	}

	fmt.Fprintf(os.Stderr, "RCON password for %s: ", server)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", &CredentialError{Msg: "failed to read password", Err: err}
	}
	return string(raw), nil
}
