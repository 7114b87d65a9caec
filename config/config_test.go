package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var configuration = `
nick = "luna"
server = "irc.example.net:6697"
tls = true
proxy = "socks5://localhost:1080"
floodrate = 2.5
channels = ["#luna", "#dev"]
scripts = ["urls"]

[log]
level = "debug"

[remote]
listen = "localhost:5151"

[redis]
addr = "localhost:6379"
db = 2
`

type dyingReader struct {
}

func (d *dyingReader) Read(b []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestConfig_FromString(t *testing.T) {
	t.Parallel()

	c := FromString(configuration)
	if !c.Validate() {
		t.Fatal("expected valid config, got:", c.Errors())
	}

	if c.Nick != "luna" {
		t.Error("nick was wrong:", c.Nick)
	}
	if c.Server != "irc.example.net:6697" {
		t.Error("server was wrong:", c.Server)
	}
	if !c.TLS || c.TLSNoVerify {
		t.Error("tls settings were wrong:", c.TLS, c.TLSNoVerify)
	}
	if c.FloodRate != 2.5 {
		t.Error("floodrate was wrong:", c.FloodRate)
	}
	if len(c.Channels) != 2 || c.Channels[1] != "#dev" {
		t.Error("channels were wrong:", c.Channels)
	}
	if c.Log.Level != "debug" {
		t.Error("log level was wrong:", c.Log.Level)
	}
	if c.Remote.Listen != "localhost:5151" {
		t.Error("remote listen was wrong:", c.Remote.Listen)
	}
	if c.Redis.Addr != "localhost:6379" || c.Redis.DB != 2 {
		t.Error("redis was wrong:", c.Redis)
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	c := FromString(`nick = "luna"
server = "irc.example.net"`)
	if !c.Validate() {
		t.Fatal("expected valid config, got:", c.Errors())
	}

	if c.Altnick != "luna_" {
		t.Error("altnick default was wrong:", c.Altnick)
	}
	if c.Username != "luna" {
		t.Error("username default was wrong:", c.Username)
	}
	if c.Realname != defaultRealname {
		t.Error("realname default was wrong:", c.Realname)
	}
	if c.Server != "irc.example.net:6667" {
		t.Error("server should get the default port:", c.Server)
	}
	if c.FloodRate != defaultFloodRate || c.FloodBurst != defaultFloodBurst {
		t.Error("flood defaults were wrong:", c.FloodRate, c.FloodBurst)
	}
	if c.Reconnect != defaultReconnect {
		t.Error("reconnect default was wrong:", c.Reconnect)
	}
	if c.UsersFile != defaultUsersFile {
		t.Error("usersfile default was wrong:", c.UsersFile)
	}
	if c.Log.Level != defaultLogLevel {
		t.Error("log level default was wrong:", c.Log.Level)
	}
	if c.Redis.Channel != defaultRedisChannel {
		t.Error("redis channel default was wrong:", c.Redis.Channel)
	}
}

func TestConfig_ExplicitZeros(t *testing.T) {
	t.Parallel()

	c := FromString(`nick = "luna"
server = "irc.example.net:6667"
reconnect = 0
floodrate = 0`)
	if !c.Validate() {
		t.Fatal("expected valid config, got:", c.Errors())
	}
	if c.Reconnect != 0 {
		t.Error("an explicit zero should disable reconnecting, got:",
			c.Reconnect)
	}
	if c.FloodRate != 0 {
		t.Error("an explicit zero should disable flood protection, got:",
			c.FloodRate)
	}
}

func TestConfig_FloodRateForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Value string
		Rate  FloodRate
		Valid bool
	}{
		{`1`, 1, true},
		{`3`, 3, true},
		{`0.5`, 0.5, true},
		{`0`, 0, true},
		{`"fast"`, 0, false},
	}

	for _, test := range tests {
		c := FromString(`nick = "luna"
server = "irc.example.net:6667"
floodrate = ` + test.Value)
		if valid := c.Validate(); valid != test.Valid {
			t.Errorf("%s: valid should be %v, errors: %v", test.Value,
				test.Valid, c.Errors())
			continue
		}
		if test.Valid && c.FloodRate != test.Rate {
			t.Errorf("%s: floodrate was wrong: %v", test.Value, c.FloodRate)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Config string
		Errors int
	}{
		{``, 2},
		{`nick = "luna"`, 1},
		{`server = "irc.example.net:6667"`, 1},
		{`nick = "luna"
server = "a:b:c"`, 1},
		{`nick = "luna"
server = "irc.example.net:6667"
proxy = "not a url"`, 1},
		{`nick = "luna"
server = "irc.example.net:6667"
floodburst = -1
reconnect = -5`, 2},
		{`nick = "luna"
server = "irc.example.net:6667"
[log]
level = "loud"`, 1},
		{`nick = "luna"
server = "irc.example.net:6667"
channels = ["#a", ""]`, 1},
	}

	for i, test := range tests {
		c := FromString(test.Config)
		if c.Validate() {
			t.Errorf("%d) expected validation to fail", i)
		}
		if ers := c.Errors(); len(ers) != test.Errors {
			t.Errorf("%d) expected %d errors, got: %v", i, test.Errors, ers)
		}
	}
}

func TestConfig_DecodeErrorsPersist(t *testing.T) {
	t.Parallel()

	c := New(&dyingReader{})
	if c.Validate() {
		t.Error("expected validation to fail")
	}
	ers := c.Errors()
	if len(ers) == 0 || !strings.Contains(ers[0].Error(), "decode") {
		t.Error("expected the decode error first, got:", ers)
	}

	// Validating again must not lose or duplicate it.
	c.Validate()
	if n := len(c.Errors()); n != len(ers) {
		t.Error("error count changed between validations:", n, len(ers))
	}
}

func TestConfig_FromFile(t *testing.T) {
	t.Parallel()

	dir, err := os.MkdirTemp("", "lunaconfig")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.toml")
	if err = os.WriteFile(path, []byte(configuration), 0600); err != nil {
		t.Fatal(err)
	}

	c := FromFile(path)
	if !c.Validate() {
		t.Fatal("expected valid config, got:", c.Errors())
	}
	if c.Filename() != path {
		t.Error("filename was wrong:", c.Filename())
	}

	c = FromFile(filepath.Join(dir, "missing.toml"))
	if c.Validate() {
		t.Error("a missing file should not validate")
	}
}
