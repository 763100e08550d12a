package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"finbook/internal/accounts"
	"finbook/internal/auth"
	"finbook/internal/config"
	"finbook/internal/models"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	// .env is optional; ignore the error when it doesn't exist.
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	question := fs.String("question", "", "Security question")
	answer := fs.String("answer", "", "Security answer")
	birthday := fs.String("birthday", "", "Birthday (YYYY-MM-DD)")
	configFile := fs.String("config", "", "Path to config file (optional)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> -email <email> -question <q> -answer <a> -birthday <YYYY-MM-DD> [-password <password>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user, email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	index, err := accounts.NewIndex(cfg.DataDir, auth.BcryptHasher{}, nil)
	if err != nil {
		return fmt.Errorf("failed to open account registry: %w", err)
	}

	acct, err := index.Register(models.Registration{
		Username:         *username,
		Email:            *email,
		Password:         password,
		SecurityQuestion: *question,
		SecurityAnswer:   *answer,
		Birthday:         *birthday,
	})
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Fprintf(stdout, "Account %s (%s) created successfully\n", acct.Username, acct.Email)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
