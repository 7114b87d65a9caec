package data

import (
	"bytes"
	"encoding/gob"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/lunairc/luna/irc"
)

var (
	// errMissingID is given when an account is created without an id.
	errMissingID = errors.New("data: missing account id")
	// errDuplicateMask is given when a duplicate mask is passed into the
	// NewAccount method.
	errDuplicateMask = errors.New("data: duplicate mask in account creation")
)

// AccountPwdCost is the cost factor for bcrypt. It should not be set
// unless the reasoning is good and the consequences are known.
var AccountPwdCost = bcrypt.DefaultCost

// Account gives the people matching its masks access to the bot. The flags
// are single letters, 'o' allows the administrative commands.
type Account struct {
	ID       string
	Masks    []string
	Flags    string
	Level    string
	Password []byte
}

// NewAccount initializes an account. Masks are optional.
func NewAccount(id string, masks ...string) (*Account, error) {
	if len(id) == 0 {
		return nil, errMissingID
	}

	a := &Account{ID: strings.ToLower(id)}
	for _, mask := range masks {
		if !a.AddMask(mask) {
			return nil, errDuplicateMask
		}
	}

	return a, nil
}

// HasFlag checks for a single flag letter.
func (a *Account) HasFlag(flag byte) bool {
	return strings.IndexByte(a.Flags, flag) >= 0
}

// HasLevel compares the account's level, ignoring case.
func (a *Account) HasLevel(level string) bool {
	return strings.EqualFold(a.Level, level)
}

// SetPassword encrypts the password string, and sets the Password property.
func (a *Account) SetPassword(password string) error {
	pwd, err := bcrypt.GenerateFromPassword([]byte(password), AccountPwdCost)
	if err != nil {
		return errors.Wrap(err, "data: hashing password")
	}
	a.Password = pwd
	return nil
}

// VerifyPassword checks to see if the given password matches the stored
// password. Accounts without a password never verify.
func (a *Account) VerifyPassword(password string) bool {
	if len(a.Password) == 0 {
		return false
	}
	return nil == bcrypt.CompareHashAndPassword(a.Password, []byte(password))
}

// AddMask adds a mask to this account's list of wildcard masks. If a
// duplicate is given it returns false.
func (a *Account) AddMask(mask string) bool {
	mask = strings.ToLower(mask)
	for _, m := range a.Masks {
		if m == mask {
			return false
		}
	}
	a.Masks = append(a.Masks, mask)
	return true
}

// DelMask deletes a mask. Returns true if the mask was found and deleted.
func (a *Account) DelMask(mask string) bool {
	mask = strings.ToLower(mask)
	for i, m := range a.Masks {
		if m == mask {
			a.Masks = append(a.Masks[:i], a.Masks[i+1:]...)
			return true
		}
	}
	return false
}

// Matches checks the host against this account's masks. An account without
// masks matches nobody; it can only be reached by identifying.
func (a *Account) Matches(host irc.Host) bool {
	for _, mask := range a.Masks {
		if irc.Mask(mask).Match(host) {
			return true
		}
	}
	return false
}

// serialize turns the account into bytes for storage.
func (a *Account) serialize() ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := gob.NewEncoder(buffer)
	if err := encoder.Encode(a); err != nil {
		return nil, errors.Wrap(err, "data: encoding account")
	}

	return buffer.Bytes(), nil
}

// deserializeAccount reverses the serialize process.
func deserializeAccount(serialized []byte) (*Account, error) {
	dec := &Account{}
	err := gob.NewDecoder(bytes.NewReader(serialized)).Decode(dec)
	if err != nil {
		return nil, errors.Wrap(err, "data: decoding account")
	}
	return dec, nil
}
