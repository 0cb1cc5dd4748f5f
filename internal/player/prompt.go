package player

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type promptOption func(*promptConfig)

func withValidator(v promptValidator) promptOption {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func withMaxTries(i int) promptOption {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// prompt writes a prompt and reads one line, re-asking while the validator
// rejects the input, up to the configured number of tries.
func prompt(rw io.ReadWriter, text string, opts ...promptOption) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	br := bufio.NewReader(rw)

	tries := 0
	for {
		if _, err := rw.Write([]byte(text)); err != nil {
			return "", err
		}

		line, err := br.ReadString('\n')
		if err != nil {
			return "", err
		}
		input := strings.TrimSpace(line)

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				if msg != "" {
					rw.Write([]byte(msg))
				}

				tries++
				if config.tries > 0 && config.tries == tries {
					return "", fmt.Errorf("too many tries")
				}
				continue
			}
		}

		return input, nil
	}
}

func promptYN(rw io.ReadWriter, text string) (bool, error) {
	str, err := prompt(rw, text, withValidator(
		func(str string) (bool, string) {
			switch strings.ToLower(str) {
			case "y", "yes", "n", "no":
				return true, ""
			default:
				return false, "enter 'yes' or 'no'\n"
			}
		},
	))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(str) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
