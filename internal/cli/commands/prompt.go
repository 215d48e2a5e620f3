package commands

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// Prompter asks the user for missing credentials
type Prompter interface {
	Interactive() bool
	Email() (string, error)
	Password() (string, error)
}

type terminalPrompter struct{}

func (terminalPrompter) Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (terminalPrompter) Email() (string, error) {
	prompt := promptui.Prompt{
		Label: "Email",
		Validate: func(input string) error {
			if input == "" {
				return fmt.Errorf("email is required")
			}
			return nil
		},
	}
	return prompt.Run()
}

func (terminalPrompter) Password() (string, error) {
	fmt.Print("Password: ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // New line after password input
	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}
