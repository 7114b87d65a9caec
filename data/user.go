package data

import (
	"strings"

	"github.com/lunairc/luna/irc"
)

// User is a channel roster entry. The same person on two channels has two
// User values.
type User struct {
	Nick     string
	Username string
	Hostname string
	Realname string
	// Modes are the channel relative mode letters, for example "ov".
	Modes string
}

// NewUser creates a user object from a nickname or fullhost.
func NewUser(nickorhost string) *User {
	h := irc.Host(nickorhost)
	u := &User{Nick: h.Nick()}
	if nick, user, host := h.Split(); len(nick) > 0 {
		u.Username = user
		u.Hostname = host
	}
	return u
}

// Host returns the fullhost of this user, or just the nick if the rest is
// not known.
func (u *User) Host() irc.Host {
	if len(u.Username) == 0 && len(u.Hostname) == 0 {
		return irc.Host(u.Nick)
	}
	return irc.NewHost(u.Nick, u.Username, u.Hostname)
}

// HasMode checks if the user holds a channel mode letter.
func (u *User) HasMode(mode byte) bool {
	return strings.IndexByte(u.Modes, mode) >= 0
}

// AddMode appends a mode letter unless it's already held.
func (u *User) AddMode(mode byte) bool {
	if u.HasMode(mode) {
		return false
	}
	u.Modes += string(mode)
	return true
}

// RemoveMode rebuilds the mode string without the letter.
func (u *User) RemoveMode(mode byte) bool {
	if !u.HasMode(mode) {
		return false
	}
	u.Modes = strings.Replace(u.Modes, string(mode), "", -1)
	return true
}

// Prefix returns the highest ranked prefix mode the user holds, according
// to the ordered prefix modes given. Returns 0 when none are held.
func (u *User) Prefix(prefixModes string) byte {
	for i := 0; i < len(prefixModes); i++ {
		if u.HasMode(prefixModes[i]) {
			return prefixModes[i]
		}
	}
	return 0
}

// Status names the user's highest prefix: "op", "voice", "regular", or the
// mode letter itself for other prefixes like halfop.
func (u *User) Status(prefixModes string) string {
	switch p := u.Prefix(prefixModes); p {
	case 0:
		return "regular"
	case 'o':
		return "op"
	case 'v':
		return "voice"
	default:
		return string(p)
	}
}

// String returns a one-line representation of this user.
func (u *User) String() string {
	str := string(u.Host())
	if len(u.Modes) > 0 {
		str += " +" + u.Modes
	}
	if len(u.Realname) > 0 {
		str += " " + u.Realname
	}
	return str
}
