package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

var errNotPositive = errors.New("must be a positive integer")

// PromptConfirm asks a yes/no question. A "no" answer is not an error.
func PromptConfirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// PromptTicks asks how many ticks to advance, defaulting to one.
func PromptTicks(label string) (int, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  "1",
		Validate: validateTicks,
	}

	txt, err := prompt.Run()
	if err != nil {
		return 0, err
	}

	return parseTicks(txt)
}

func validateTicks(s string) error {
	_, err := parseTicks(s)

	return err
}

func parseTicks(s string) (int, error) {
	val, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %w", err)
	}

	if val <= 0 {
		return 0, errNotPositive
	}

	return int(val), nil
}

// Interrupted reports whether err comes from the user pressing Ctrl-C or
// Ctrl-D at a prompt.
func Interrupted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}
