package data

import (
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	s, err := NewStore(MemStoreProvider)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStore(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	if s.cache == nil || s.authed == nil {
		t.Error("Maps not instantiated.")
	}
	if err := s.Close(); err != nil {
		t.Error("Closing database failed:", err)
	}
}

func TestStore_AddFindRemove(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	defer s.Close()

	a, _ := NewAccount("user", "*!*@host")
	if err := s.AddAccount(a); err != nil {
		t.Fatal("Error adding account:", err)
	}
	if s.cache["user"] != a {
		t.Error("Account was not cached.")
	}

	fetched, err := s.fetchAccount("user")
	if err != nil || fetched == nil {
		t.Fatal("Account was not stored:", err)
	}

	found, err := s.FindAccount("USER")
	if err != nil || found != a {
		t.Error("Expected the cached account, got:", found, err)
	}

	removed, err := s.RemoveAccount("user")
	if err != nil || !removed {
		t.Error("Expected removal, got:", removed, err)
	}
	if found, _ = s.FindAccount("user"); found != nil {
		t.Error("Account should be gone.")
	}
	if removed, _ = s.RemoveAccount("user"); removed {
		t.Error("Second removal should report false.")
	}
}

func TestStore_CacheLimits(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	defer s.Close()

	for i := 0; i < nMaxCache; i++ {
		s.cache[strings.Repeat("x", i+1)] = &Account{}
	}
	a, _ := NewAccount("user")
	if err := s.AddAccount(a); err != nil {
		t.Fatal(err)
	}
	if len(s.cache) != 1 {
		t.Error("Cache should have been dumped, size:", len(s.cache))
	}
}

func TestStore_Match(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	defer s.Close()

	admin, _ := NewAccount("admin", "*!*@home.net")
	admin.Flags = "o"
	other, _ := NewAccount("other", "*!*@*.net")
	s.AddAccount(other)
	s.AddAccount(admin)

	found, err := s.Match("nick!u@HOME.net")
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || found.ID != "admin" {
		t.Error("Expected the first matching account by id, got:", found)
	}

	found, _ = s.Match("nick!u@nowhere.org")
	if found != nil {
		t.Error("Expected no match, got:", found)
	}
}

func TestStore_Identify(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	defer s.Close()

	a, _ := NewAccount("user")
	a.SetPassword("pass")
	s.AddAccount(a)

	if _, err := s.Identify("n!u@h", "nobody", "pass"); err != ErrAccountNotFound {
		t.Error("Expected not found, got:", err)
	}
	if _, err := s.Identify("n!u@h", "user", "bad"); err != ErrAccountBadPassword {
		t.Error("Expected bad password, got:", err)
	}

	if found, _ := s.Match("n!u@h"); found != nil {
		t.Error("Should not match before identifying.")
	}
	if _, err := s.Identify("n!u@h", "user", "pass"); err != nil {
		t.Fatal(err)
	}
	if found, _ := s.Match("N!u@h"); found == nil || found.ID != "user" {
		t.Error("Expected identified match, got:", found)
	}

	s.Logout("n")
	if found, _ := s.Match("n!u@h"); found != nil {
		t.Error("Logout should drop the binding.")
	}
}

func TestStore_Import(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	defer s.Close()

	old, _ := NewAccount("old", "*!*@*")
	s.AddAccount(old)

	n, err := s.Import(strings.NewReader(
		"admin:*!*@home.net:o:100\nfriend:*!friend@*::1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Error("Expected two accounts, got:", n)
	}

	accounts, err := s.Accounts()
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 2 || accounts[0].ID != "admin" || accounts[1].ID != "friend" {
		t.Error("Import should replace the accounts:", accounts)
	}
	if found, _ := s.FindAccount("old"); found != nil {
		t.Error("Old account should be gone, including from the cache.")
	}

	if _, err = s.Import(strings.NewReader("broken")); err == nil {
		t.Error("Expected a parse error.")
	}
	if accounts, _ = s.Accounts(); len(accounts) != 2 {
		t.Error("A failed import should change nothing.")
	}
}
