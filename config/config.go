/*
Package config creates a configuration using toml.

An example configuration looks like this:
	nick = "Luna"
	altnick = "Luna_"
	username = "luna"
	realname = "Luna"
	password = "serverpass"

	server = "irc.example.net:6697"
	tls = true
	tlsnoverify = false
	# Optional, dial through a proxy.
	proxy = "socks5://localhost:1080"

	# Lines per second and how many may be sent in a burst, a floodrate
	# of 0 turns flood protection off.
	floodrate = 1.0
	floodburst = 4

	# Seconds to wait between reconnects, 0 disables reconnecting.
	reconnect = 30

	channels = ["#luna", "#lunadev"]

	# Access accounts, imported into the access database on start and
	# by the reloadusers command.
	usersfile = "users.txt"
	accessdb = "access.db"

	scripts = ["ctcp", "urls"]
	version = "Luna IRC daemon"

	[log]
		level = "info"
		file = "/path/to/luna.log"

	# Define listen to stream signals to remote observers over grpc.
	[remote]
		listen = "localhost:5151"

	# Define addr to publish signals to a redis channel.
	[redis]
		addr = "localhost:6379"
		password = ""
		db = 0
		channel = "luna.signals"

Anything left out takes its default, only nick and server are required.
*/
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"
)

const (
	// defaultRealname is the realname used when none is configured.
	defaultRealname = "Luna"
	// defaultFloodRate is how many lines per second may be written.
	defaultFloodRate = 1.0
	// defaultFloodBurst is how many lines may be written at once before
	// flood protection starts spacing them out.
	defaultFloodBurst = 4
	// defaultReconnect is how many seconds to wait between reconns.
	defaultReconnect = 30
	// defaultLogLevel is the level logging filters at.
	defaultLogLevel = "info"
	// defaultUsersFile is where access accounts are read from.
	defaultUsersFile = "users.txt"
	// defaultRedisChannel is the channel signals are published on.
	defaultRedisChannel = "luna.signals"
	// defaultIrcPort is appended to servers given without a port.
	defaultIrcPort = "6667"
)

// Config holds all the information needed to run one session.
type Config struct {
	Nick     string `toml:"nick"`
	Altnick  string `toml:"altnick"`
	Username string `toml:"username"`
	Realname string `toml:"realname"`
	Password string `toml:"password"`

	Server      string `toml:"server"`
	TLS         bool   `toml:"tls"`
	TLSNoVerify bool   `toml:"tlsnoverify"`
	Proxy       string `toml:"proxy"`

	FloodRate  FloodRate `toml:"floodrate"`
	FloodBurst int       `toml:"floodburst"`
	Reconnect  int       `toml:"reconnect"`

	Channels  []string `toml:"channels"`
	UsersFile string   `toml:"usersfile"`
	AccessDB  string   `toml:"accessdb"`
	Scripts   []string `toml:"scripts"`
	Version   string   `toml:"version"`

	Log    Log    `toml:"log"`
	Remote Remote `toml:"remote"`
	Redis  Redis  `toml:"redis"`

	errors   errList
	filename string
	protect  sync.RWMutex
}

// FloodRate is a number of lines per second. It may be written in the
// file as an integer or a float.
type FloodRate float64

// UnmarshalTOML accepts either kind of toml number.
func (f *FloodRate) UnmarshalTOML(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*f = FloodRate(v)
	case float64:
		*f = FloodRate(v)
	default:
		return errors.Errorf("floodrate must be a number, given: %v", value)
	}
	return nil
}

// Log configures the root logger.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Remote configures the grpc signal stream.
type Remote struct {
	Listen string `toml:"listen"`
}

// Redis configures the redis signal publisher.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Channel  string `toml:"channel"`
}

// New decodes a configuration from a reader. Decoding problems are kept
// and reported by Validate.
func New(r io.Reader) *Config {
	c := &Config{}
	md, err := toml.DecodeReader(r, c)
	if err != nil {
		c.errors = append(c.errors,
			decodeError{fmt.Errorf("config: Failed to decode (%v)", err)})
	}
	c.setDefaults(md)
	return c
}

// FromString decodes a configuration from a string.
func FromString(str string) *Config {
	return New(strings.NewReader(str))
}

// FromFile decodes a configuration from a file.
func FromFile(filename string) *Config {
	f, err := os.Open(filename)
	if err != nil {
		c := &Config{}
		c.errors = append(c.errors, decodeError{errors.Wrap(err,
			"config: Failed to load config file")})
		c.filename = filename
		c.setDefaults(toml.MetaData{})
		return c
	}
	defer f.Close()

	c := New(f)
	c.filename = filename
	return c
}

// setDefaults fills in everything left out that has a default.
func (c *Config) setDefaults(md toml.MetaData) {
	if len(c.Altnick) == 0 && len(c.Nick) > 0 {
		c.Altnick = c.Nick + "_"
	}
	if len(c.Username) == 0 {
		c.Username = c.Nick
	}
	if len(c.Realname) == 0 {
		c.Realname = defaultRealname
	}
	if !md.IsDefined("floodrate") {
		c.FloodRate = defaultFloodRate
	}
	if c.FloodBurst == 0 {
		c.FloodBurst = defaultFloodBurst
	}
	if !md.IsDefined("reconnect") {
		c.Reconnect = defaultReconnect
	}
	if len(c.UsersFile) == 0 {
		c.UsersFile = defaultUsersFile
	}
	if len(c.Log.Level) == 0 {
		c.Log.Level = defaultLogLevel
	}
	if len(c.Redis.Channel) == 0 {
		c.Redis.Channel = defaultRedisChannel
	}
	if len(c.Server) > 0 && !strings.Contains(c.Server, ":") {
		c.Server += ":" + defaultIrcPort
	}
}

// Filename returns the file the configuration was read from, if any.
func (c *Config) Filename() string {
	c.protect.RLock()
	defer c.protect.RUnlock()

	return c.filename
}

// DisplayErrors is a helper function to log the output of all config errors.
func (c *Config) DisplayErrors(logger log15.Logger) {
	c.protect.RLock()
	defer c.protect.RUnlock()

	for _, e := range c.errors {
		logger.Error(e.Error())
	}
}
