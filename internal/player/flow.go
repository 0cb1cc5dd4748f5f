package player

import (
	"fmt"
	"io"
	"time"
	"unicode"

	"github.com/driftwood-mud/driftwood/internal/persist"
	"golang.org/x/crypto/bcrypt"
)

const maxPasswordTries = 3

// loginFlow walks a fresh connection through name and password, producing
// the player's save data. For a new character it creates (but does not
// write) a save record with a hashed password; the first successful save
// persists it.
type loginFlow struct {
	store *persist.FileStore
}

type loginResult struct {
	save  *persist.PlayerSaveData
	isNew bool
}

func (f *loginFlow) Run(rw io.ReadWriter) (*loginResult, error) {
	rw.Write([]byte("Welcome to Driftwood!\n"))

	for {
		username, err := prompt(rw, "By what name do you wish to be known? ",
			withValidator(validName))
		if err != nil {
			return nil, err
		}

		save := f.store.LoadPlayer(username)

		// Must be a new character
		if save == nil {
			save, err = f.newCharacter(rw, username)
			if err != nil {
				return nil, err
			}
			if save == nil {
				continue
			}
			return &loginResult{save: save, isNew: true}, nil
		}

		// Existing character
		_, err = prompt(rw, "Password: ", withMaxTries(maxPasswordTries), withValidator(
			func(str string) (bool, string) {
				err := bcrypt.CompareHashAndPassword([]byte(save.Password), []byte(str))
				return err == nil, "Wrong password.\n"
			},
		))
		if err != nil {
			return nil, fmt.Errorf("password check for %q: %w", username, err)
		}

		return &loginResult{save: save}, nil
	}
}

func (f *loginFlow) newCharacter(rw io.ReadWriter, username string) (*persist.PlayerSaveData, error) {
	ok, err := promptYN(rw, fmt.Sprintf("Did I get that right, %s (Y/N)? ", username))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	for {
		passOne, err := prompt(rw, fmt.Sprintf("Give me a password for %s: ", username), withValidator(
			func(str string) (bool, string) {
				if len(str) < 3 {
					return false, "Illegal password.\n"
				}
				return true, ""
			},
		))
		if err != nil {
			return nil, err
		}

		passTwo, err := prompt(rw, "Please retype password: ")
		if err != nil {
			return nil, err
		}

		if passOne != passTwo {
			rw.Write([]byte("Passwords don't match... start over.\n"))
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(passOne), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}

		return &persist.PlayerSaveData{
			Name:      username,
			Password:  string(hash),
			CreatedAt: time.Now().UTC(),
		}, nil
	}
}

func validName(str string) (bool, string) {
	if len(str) < 2 || len(str) > 20 {
		return false, "Invalid name, please try another.\n"
	}
	for _, r := range str {
		if !unicode.IsLetter(r) {
			return false, "Invalid name, please try another.\n"
		}
	}
	return true, ""
}
