// Command signup is a terminal front end for the registration flow. It
// feeds each username keystroke-equivalent (line) through the debounced
// availability monitor, then collects email and password and submits.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Adnan2001Bin/task-management-application/internal/client"
)

func main() {
	baseURL := flag.String("server", "http://localhost:8080", "registration service base URL")
	flag.Parse()

	if err := run(*baseURL); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(baseURL string) error {
	c := client.New(baseURL)

	form := client.NewSignUpForm(c, client.DefaultDebounce, func(u client.Update) {
		switch u.Status {
		case client.StatusChecking:
			fmt.Printf("  checking %q...\n", u.Name)
		case client.StatusAvailable:
			fmt.Printf("  %q is available!\n", u.Name)
		case client.StatusTaken:
			fmt.Printf("  %q is already taken.\n", u.Name)
		case client.StatusError:
			fmt.Printf("  error checking %q: %s\n", u.Name, u.Message)
		}
	})
	defer form.Close()

	reader := bufio.NewReader(os.Stdin)

	for {
		name, err := prompt(reader, "Username (empty to re-enter after a taken name): ")
		if err != nil {
			return err
		}
		form.SetName(name)

		// Give the debounced check time to settle before deciding.
		time.Sleep(client.DefaultDebounce + 2*time.Second)

		if form.Monitor.Status() != client.StatusTaken {
			break
		}
	}

	email, err := prompt(reader, "Email: ")
	if err != nil {
		return err
	}
	form.SetEmail(email)

	password, err := prompt(reader, "Password: ")
	if err != nil {
		return err
	}
	form.SetPassword(password)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := form.Submit(ctx)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("registration rejected: %s", apiErr.Message)
		}
		return err
	}

	fmt.Println(result.Message)
	fmt.Printf("Continue at %s to enter your verification code.\n", result.RedirectPath)
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
