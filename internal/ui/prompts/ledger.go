package prompts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/bluepython508/monfari/internal/ledger"
)

// PromptAccount prompts for one account of the given axis. Disabled accounts
// are not offered.
func PromptAccount(message string, accounts []ledger.Account, axis ledger.AccountType) (ledger.Account, error) {
	byLabel := make(map[string]ledger.Account)
	var options []huh.Option[string]

	for _, acc := range accounts {
		if acc.Type != axis || !acc.Enabled {
			continue
		}
		label := fmt.Sprintf("%s (%s)", acc.Name, acc.ID)
		byLabel[label] = acc
		options = append(options, huh.NewOption(label, label))
	}

	if len(options) == 0 {
		return ledger.Account{}, fmt.Errorf("no enabled %s accounts to choose from", axis)
	}

	var selected string
	err := huh.NewSelect[string]().
		Title(message).
		Options(options...).
		Value(&selected).
		Height(10).
		Run()
	if err != nil {
		return ledger.Account{}, err
	}

	return byLabel[selected], nil
}

// PromptAmount prompts for an amount like "12.34 EUR". A bare number takes
// the default currency.
func PromptAmount(message string, defaultCurrency string) (ledger.Amount, error) {
	parse := func(s string) (ledger.Amount, error) {
		s = strings.TrimSpace(s)
		if !strings.Contains(s, " ") && defaultCurrency != "" {
			s = s + " " + defaultCurrency
		}
		return ledger.ParseAmount(s)
	}

	var input string
	err := huh.NewInput().
		Title(message).
		Description(fmt.Sprintf(`Format: "12.34 %s" (a bare number uses %s)`, defaultCurrency, defaultCurrency)).
		Value(&input).
		Validate(func(s string) error {
			_, err := parse(s)
			return err
		}).
		Run()
	if err != nil {
		return ledger.Amount{}, err
	}

	return parse(input)
}

// PromptNotes prompts for free-form notes
func PromptNotes(message string, required bool) (string, error) {
	var notes string

	input := huh.NewInput().
		Title(message).
		Value(&notes)

	if required {
		input.Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("a value is required")
			}
			return nil
		})
	}

	err := input.Run()
	return notes, err
}

// PromptAccountType prompts for the account axis
func PromptAccountType() (ledger.AccountType, error) {
	options := []string{
		"physical - where money actually sits",
		"virtual - what money is earmarked for",
	}

	selected, err := PromptSelect("Account type:", options, options[0])
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}

	return ledger.ParseAccountType(strings.Split(selected, " ")[0])
}
