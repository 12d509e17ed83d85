package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name passwords are stored under.
const KeyringService = "stnl"

func (d Database) keyringUser() string {
	return d.Alias + "/" + d.User
}

// ResolvePassword fills an empty Password from the OS keyring. A missing
// keyring entry leaves the password empty; other keyring errors are returned.
func (d *Database) ResolvePassword() error {
	if d.Password != "" {
		return nil
	}
	pw, err := keyring.Get(KeyringService, d.keyringUser())
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("keyring lookup %s: %w", d.keyringUser(), err)
	}
	d.Password = pw
	return nil
}

// StorePassword saves the password of d in the OS keyring.
func StorePassword(d Database, password string) error {
	if err := keyring.Set(KeyringService, d.keyringUser(), password); err != nil {
		return fmt.Errorf("keyring store %s: %w", d.keyringUser(), err)
	}
	return nil
}

// DeletePassword removes the keyring entry of d. A missing entry is not an
// error.
func DeletePassword(d Database) error {
	err := keyring.Delete(KeyringService, d.keyringUser())
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s: %w", d.keyringUser(), err)
	}
	return nil
}
