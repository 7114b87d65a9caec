package data

import (
	"io"
	"os"
	"strings"

	"github.com/cznic/kv"
	"github.com/pkg/errors"

	"github.com/lunairc/luna/irc"
)

var (
	nMaxCache = 1000

	// ErrAccountNotFound is returned when no account has the given id.
	ErrAccountNotFound = errors.New("data: account not found")
	// ErrAccountBadPassword is returned when identify fails its password
	// check.
	ErrAccountBadPassword = errors.New("data: account password does not match")
)

// DBProvider opens the key value database backing a Store.
type DBProvider func() (*kv.DB, error)

// MemStoreProvider creates an in-memory database.
func MemStoreProvider() (*kv.DB, error) {
	return kv.CreateMem(&kv.Options{})
}

// FileStoreProvider opens the database at path, creating it if it doesn't
// exist.
func FileStoreProvider(path string) DBProvider {
	return func() (*kv.DB, error) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return kv.Create(path, &kv.Options{})
		}
		return kv.Open(path, &kv.Options{})
	}
}

// Store keeps Accounts keyed by id, caches their lookup, and remembers
// which hosts identified to which account.
type Store struct {
	db     *kv.DB
	cache  map[string]*Account
	authed map[string]string
}

// NewStore initializes a store type.
func NewStore(prov DBProvider) (*Store, error) {
	db, err := prov()
	if err != nil {
		return nil, errors.Wrap(err, "data: opening account database")
	}

	s := &Store{
		db:     db,
		cache:  make(map[string]*Account),
		authed: make(map[string]string),
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddAccount adds or replaces an account.
func (s *Store) AddAccount(a *Account) error {
	serialized, err := a.serialize()
	if err != nil {
		return err
	}

	if err = s.db.Set([]byte(a.ID), serialized); err != nil {
		return errors.Wrapf(err, "data: storing account %s", a.ID)
	}

	s.checkCacheLimits()
	s.cache[a.ID] = a
	return nil
}

// RemoveAccount removes an account by id.
func (s *Store) RemoveAccount(id string) (bool, error) {
	id = strings.ToLower(id)
	found, err := s.fetchAccount(id)
	if err != nil || found == nil {
		return false, err
	}

	delete(s.cache, id)
	for host, authed := range s.authed {
		if authed == id {
			delete(s.authed, host)
		}
	}
	return true, s.db.Delete([]byte(id))
}

// FindAccount looks up an account by id. Returns nil when there is none.
func (s *Store) FindAccount(id string) (*Account, error) {
	id = strings.ToLower(id)
	if cached, ok := s.cache[id]; ok {
		return cached, nil
	}

	a, err := s.fetchAccount(id)
	if err != nil || a == nil {
		return nil, err
	}

	s.checkCacheLimits()
	s.cache[id] = a
	return a, nil
}

// Accounts returns every account ordered by id.
func (s *Store) Accounts() ([]*Account, error) {
	var accounts []*Account
	err := s.each(func(key, value []byte) error {
		a, err := deserializeAccount(value)
		if err != nil {
			return err
		}
		accounts = append(accounts, a)
		return nil
	})
	return accounts, err
}

// Match finds the account for a host. A host that identified gets that
// account, otherwise the first account by id with a matching mask.
func (s *Store) Match(host irc.Host) (*Account, error) {
	if id, ok := s.authed[strings.ToLower(string(host))]; ok {
		a, err := s.FindAccount(id)
		if err != nil || a != nil {
			return a, err
		}
	}

	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Matches(host) {
			return a, nil
		}
	}
	return nil, nil
}

// Identify binds a host to an account after checking its password.
func (s *Store) Identify(host irc.Host, id, password string) (*Account, error) {
	a, err := s.FindAccount(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	if !a.VerifyPassword(password) {
		return nil, ErrAccountBadPassword
	}

	s.authed[strings.ToLower(string(host))] = a.ID
	return a, nil
}

// Logout forgets any identification made by hosts with this nick.
func (s *Store) Logout(nick string) {
	nick = strings.ToLower(nick)
	for host := range s.authed {
		if irc.Nick(host) == nick {
			delete(s.authed, host)
		}
	}
}

// Import replaces every account with the ones read from r in users file
// format. Nothing is changed if r fails to parse. Returns the number of
// accounts loaded.
func (s *Store) Import(r io.Reader) (int, error) {
	accounts, err := ParseUsers(r)
	if err != nil {
		return 0, err
	}

	if err = s.db.BeginTransaction(); err != nil {
		return 0, errors.Wrap(err, "data: starting import")
	}

	var keys [][]byte
	err = s.each(func(key, _ []byte) error {
		keys = append(keys, append([]byte(nil), key...))
		return nil
	})
	for i := 0; err == nil && i < len(keys); i++ {
		err = s.db.Delete(keys[i])
	}
	for i := 0; err == nil && i < len(accounts); i++ {
		var serialized []byte
		if serialized, err = accounts[i].serialize(); err == nil {
			err = s.db.Set([]byte(accounts[i].ID), serialized)
		}
	}

	if err != nil {
		_ = s.db.Rollback()
		return 0, errors.Wrap(err, "data: importing accounts")
	}
	if err = s.db.Commit(); err != nil {
		return 0, errors.Wrap(err, "data: committing import")
	}

	s.cache = make(map[string]*Account)
	s.authed = make(map[string]string)
	return len(accounts), nil
}

// ImportFile is Import reading from a file.
func (s *Store) ImportFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "data: opening users file")
	}
	defer f.Close()

	return s.Import(f)
}

// fetchAccount gets an account from the database based on id.
func (s *Store) fetchAccount(id string) (*Account, error) {
	serialized, err := s.db.Get(nil, []byte(id))
	if err != nil {
		return nil, errors.Wrapf(err, "data: fetching account %s", id)
	}
	if serialized == nil {
		return nil, nil
	}

	return deserializeAccount(serialized)
}

// each walks the database in key order.
func (s *Store) each(fn func(key, value []byte) error) error {
	en, err := s.db.SeekFirst()
	if err == io.EOF {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "data: seeking accounts")
	}

	for {
		key, value, err := en.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "data: enumerating accounts")
		}
		if err = fn(key, value); err != nil {
			return err
		}
	}
}

// checkCacheLimits verifies if adding one to the size of the cache will
// cross it's boundaries, if so, it dumps the cache.
func (s *Store) checkCacheLimits() {
	if len(s.cache)+1 > nMaxCache {
		s.cache = make(map[string]*Account)
	}
}
