// Package commands holds the api binary's subcommands.
package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/LooKaiJun/ShoreSquad/internal/auth"
)

// HashPassword handles the hash-password subcommand.
func HashPassword(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	overwrite := fs.Bool("overwrite", false, "Overwrite existing auth file without asking")
	insecureUnmask := fs.Bool("insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: api hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Creates an auth file with an Argon2id password hash.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  AUTH_FILE    Path to auth file (default: ./%s)\n", auth.DefaultAuthFile)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := os.Getenv("AUTH_FILE")
	if path == "" {
		path = auth.DefaultAuthFile
	}

	stdin := bufio.NewReader(os.Stdin)

	username, err := prompt(stdin, "Enter username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	var password, confirm string
	if *insecureUnmask {
		fmt.Fprintln(os.Stderr, "WARNING: password will be visible on screen")
		if password, err = prompt(stdin, "Enter password:   "); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if confirm, err = prompt(stdin, "Confirm password: "); err != nil {
			return fmt.Errorf("failed to read password confirmation: %w", err)
		}
	} else {
		if password, err = readPassword("Enter password:   "); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if confirm, err = readPassword("Confirm password: "); err != nil {
			return fmt.Errorf("failed to read password confirmation: %w", err)
		}
	}

	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	err = auth.CreateAuthFile(path, username, password, *overwrite)
	if errors.Is(err, auth.ErrAuthFileExists) {
		answer, perr := prompt(stdin, fmt.Sprintf("Auth file already exists: %s\nOverwrite? (y/N): ", path))
		if perr != nil {
			return fmt.Errorf("failed to read answer: %w", perr)
		}
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			return errors.New("aborted")
		}
		err = auth.CreateAuthFile(path, username, password, true)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Auth file created: %s (mode: 0400 read-only)\n", path)
	fmt.Printf("   Username: %s\n", username)

	return nil
}

func prompt(r *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a password without echo.
func readPassword(label string) (string, error) {
	fmt.Print(label)
	defer fmt.Println()

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; use --insecure-unmask-password to pipe input")
	}

	b, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
