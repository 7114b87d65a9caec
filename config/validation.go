package config

import (
	"fmt"
	"net"
	"net/url"

	"gopkg.in/inconshreveable/log15.v2"
)

// errList is an array of errors.
type errList []error

// addError builds an error object and appends it to this instances errors.
func (l *errList) addError(format string, args ...interface{}) {
	*l = append(*l, fmt.Errorf(format, args...))
}

// Errors returns the errors encountered during decoding and validation.
func (c *Config) Errors() []error {
	c.protect.RLock()
	defer c.protect.RUnlock()

	ers := make([]error, len(c.errors))
	copy(ers, c.errors)
	return ers
}

// Validate checks to see if the configuration is valid. If errors are found in
// the config the Config.Errors() will return the validation errors.
// These can be used to display to the user. See DisplayErrors for a display
// helper.
func (c *Config) Validate() bool {
	c.protect.Lock()
	defer c.protect.Unlock()

	ers := make(errList, 0)
	for _, e := range c.errors {
		// Keep decode errors, validation errors are rebuilt every time.
		if _, ok := e.(decodeError); ok {
			ers = append(ers, e)
		}
	}

	c.validateRequired(&ers)
	c.validateValues(&ers)

	c.errors = ers
	return len(ers) == 0
}

// decodeError marks errors that came from reading the file rather than from
// validating its values.
type decodeError struct {
	error
}

// validateRequired checks that all required fields are present.
func (c *Config) validateRequired(ers *errList) {
	if len(c.Nick) == 0 {
		ers.addError("config: Nickname is required.")
	}
	if len(c.Server) == 0 {
		ers.addError("config: Server is required.")
	}
}

// validateValues checks the fields that were given make sense.
func (c *Config) validateValues(ers *errList) {
	if len(c.Server) > 0 {
		if _, _, err := net.SplitHostPort(c.Server); err != nil {
			ers.addError("config: Invalid server, given: %v", c.Server)
		}
	}
	if len(c.Proxy) > 0 {
		u, err := url.Parse(c.Proxy)
		if err != nil || len(u.Scheme) == 0 || len(u.Host) == 0 {
			ers.addError("config: Invalid proxy, given: %v", c.Proxy)
		}
	}
	if c.FloodRate < 0 {
		ers.addError("config: Invalid floodrate, given: %v", c.FloodRate)
	}
	if c.FloodBurst < 1 {
		ers.addError("config: Invalid floodburst, given: %v", c.FloodBurst)
	}
	if c.Reconnect < 0 {
		ers.addError("config: Invalid reconnect, given: %v", c.Reconnect)
	}
	if _, err := log15.LvlFromString(c.Log.Level); err != nil {
		ers.addError("config: Invalid log level, given: %v", c.Log.Level)
	}
	for _, ch := range c.Channels {
		if len(ch) == 0 {
			ers.addError("config: Channels may not be empty.")
			break
		}
	}
}
