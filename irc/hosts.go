package irc

import (
	"regexp"
	"strings"
)

var (
	// rgxHost validates and splits hosts.
	rgxHost = regexp.MustCompile(
		`(?i)^` +
			`([\w\x5B-\x60][\w\d\x5B-\x60-]*)` + // nickname
			`!([^\0@\s]+)` + // username
			`@([^\0\s]+)` + // host
			`$`,
	)
)

// Host is a type that represents an irc hostname. nickname!username@hostname
type Host string

// NewHost joins the fragments of a host together.
func NewHost(nick, user, hostname string) Host {
	return Host(nick + "!" + user + "@" + hostname)
}

// Nick returns the nick of the host.
func (h Host) Nick() string {
	return Nick(string(h))
}

// Username returns the username of the host.
func (h Host) Username() string {
	return Username(string(h))
}

// Hostname returns the host of the host.
func (h Host) Hostname() string {
	return Hostname(string(h))
}

// Split splits a host into it's fragments: nick, user, and hostname. If the
// format is not acceptable empty string is returned for everything.
func (h Host) Split() (nick, user, hostname string) {
	return Split(string(h))
}

// String returns the fullhost of this host.
func (h Host) String() string {
	return string(h)
}

// IsValid checks to ensure the host is in valid format.
func (h Host) IsValid() bool {
	return rgxHost.MatchString(string(h))
}

// Match checks if a given mask is satisfied by the host.
func (h Host) Match(m Mask) bool {
	return m.Match(h)
}

// Mask is an irc hostmask that contains wildcard characters ? and *
type Mask string

// Match checks if the mask satisfies the given host. Comparison is case
// insensitive.
func (m Mask) Match(h Host) bool {
	return isMatch(strings.ToLower(string(h)), strings.ToLower(string(m)))
}

// String returns the mask as a string.
func (m Mask) String() string {
	return string(m)
}

// isMatch is a matching function for a string, and a string with the wildcards
// * and ? in it. On a mismatch after a star it backs up to the character
// following the last star and lets the star swallow one more character.
func isMatch(hs, ms string) bool {
	i, j := 0, 0
	star, mark := -1, 0

	for j < len(hs) {
		switch {
		case i < len(ms) && (ms[i] == '?' || ms[i] == hs[j]):
			i++
			j++
		case i < len(ms) && ms[i] == '*':
			star = i
			mark = j
			i++
		case star >= 0:
			i = star + 1
			mark++
			j = mark
		default:
			return false
		}
	}

	for i < len(ms) && ms[i] == '*' {
		i++
	}
	return i == len(ms)
}

// Nick returns the nick of the host.
func Nick(host string) string {
	index := strings.IndexAny(host, "!@")
	if index >= 0 {
		return host[:index]
	}
	return host
}

// Username returns the username of the host.
func Username(host string) string {
	_, user, _ := Split(host)
	return user
}

// Hostname returns the host of the host.
func Hostname(host string) string {
	_, _, hostname := Split(host)
	return hostname
}

// Split splits a host into it's fragments: nick, user, and hostname. If the
// format is not acceptable empty string is returned for everything.
func Split(host string) (nick, user, hostname string) {
	fragments := rgxHost.FindStringSubmatch(host)
	if len(fragments) == 0 {
		return
	}
	return fragments[1], fragments[2], fragments[3]
}
