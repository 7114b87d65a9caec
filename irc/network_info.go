package irc

import (
	"strconv"
	"strings"
	"sync"
)

// These constants are the keys of the 005 tokens NetworkInfo understands.
const (
	INFO_CASEMAPPING = "CASEMAPPING"
	INFO_PREFIX      = "PREFIX"
	INFO_CHANTYPES   = "CHANTYPES"
	INFO_CHANMODES   = "CHANMODES"
	INFO_NETWORK     = "NETWORK"
	INFO_NICKLEN     = "NICKLEN"
	INFO_MODES       = "MODES"
)

// These constants are the values used until the server announces its own.
const (
	INFO_DEFAULT_CASEMAPPING = "rfc1459"
	INFO_DEFAULT_PREFIX      = "(ov)@+"
	INFO_DEFAULT_CHANTYPES   = "#&"
	INFO_DEFAULT_CHANMODES   = "beI,k,l,imnOPRstz"
	INFO_DEFAULT_NICKLEN     = 9
	INFO_DEFAULT_MODES       = 3
)

// MaxPrefixes bounds the prefix table, extra PREFIX pairs are ignored.
const MaxPrefixes = 8

// ModeKind says how a channel mode letter consumes arguments.
type ModeKind int

// Mode kinds in the order they are checked by Classify.
const (
	// ModeBoolean takes no argument.
	ModeBoolean ModeKind = iota
	// ModeAddress is a list of masks, argument on set and unset.
	ModeAddress
	// ModeAlways holds one value, argument on set and unset.
	ModeAlways
	// ModeWhenSet holds one value, argument on set only.
	ModeWhenSet
	// ModeNick is a user prefix mode, argument is a nick.
	ModeNick
)

// String returns the name of the kind.
func (k ModeKind) String() string {
	switch k {
	case ModeAddress:
		return "address"
	case ModeAlways:
		return "always"
	case ModeWhenSet:
		return "whenset"
	case ModeNick:
		return "nick"
	}
	return "boolean"
}

// NetworkInfo is used to record the server capabilities, this later aids in
// parsing irc protocol. It holds the mode-class table, the ordered prefix
// table and the channel types.
type NetworkInfo struct {
	network     string
	casemapping string
	chantypes   string
	nicklen     int
	modes       int

	// CHANMODES groups.
	address string
	always  string
	whenset string
	never   string

	// nickModes are the letters taking a nick argument, it's the mode half of
	// PREFIX.
	nickModes string
	// prefixModes and prefixSymbols pair up index by index, highest rank
	// first.
	prefixModes   []byte
	prefixSymbols []byte

	// The other flags sent in.
	extras map[string]string

	protect sync.RWMutex
}

// NewNetworkInfo initializes a networkinfo struct with defaults.
func NewNetworkInfo() *NetworkInfo {
	n := &NetworkInfo{
		casemapping: INFO_DEFAULT_CASEMAPPING,
		chantypes:   INFO_DEFAULT_CHANTYPES,
		nicklen:     INFO_DEFAULT_NICKLEN,
		modes:       INFO_DEFAULT_MODES,
		extras:      make(map[string]string),
	}
	n.setChanmodes(INFO_DEFAULT_CHANMODES)
	n.setPrefix(INFO_DEFAULT_PREFIX)
	return n
}

// ParseISupport adds all values in a 005 to the current networkinfo object.
// The first argument, our own nick, is skipped. Later CHANMODES and PREFIX
// tokens replace earlier ones.
func (n *NetworkInfo) ParseISupport(e *Event) {
	args := e.Args()
	if len(args) < 2 {
		return
	}

	n.protect.Lock()
	defer n.protect.Unlock()

	for _, arg := range args[1:] {
		if len(arg) == 0 || strings.ContainsRune(arg, ' ') {
			continue
		}

		name, value := arg, ""
		if i := strings.IndexByte(arg, '='); i >= 0 {
			name, value = arg[:i], arg[i+1:]
		}

		switch strings.ToUpper(name) {
		case INFO_CHANMODES:
			n.setChanmodes(value)
		case INFO_PREFIX:
			n.setPrefix(value)
		case INFO_CHANTYPES:
			n.chantypes = value
		case INFO_CASEMAPPING:
			n.casemapping = strings.ToLower(value)
		case INFO_NETWORK:
			n.network = value
		case INFO_NICKLEN:
			if i, err := strconv.Atoi(value); err == nil {
				n.nicklen = i
			}
		case INFO_MODES:
			if i, err := strconv.Atoi(value); err == nil {
				n.modes = i
			}
		default:
			if strings.HasPrefix(name, "-") {
				delete(n.extras, name[1:])
				continue
			}
			if value == "" {
				value = "true"
			}
			n.extras[name] = value
		}
	}
}

// setChanmodes fills the four mode groups from a CHANMODES value. Missing
// groups are left empty.
func (n *NetworkInfo) setChanmodes(value string) {
	groups := strings.SplitN(value, ",", 5)
	for len(groups) < 4 {
		groups = append(groups, "")
	}
	n.address = groups[0]
	n.always = groups[1]
	n.whenset = groups[2]
	n.never = groups[3]
}

// setPrefix parses a PREFIX value of the form (modes)symbols.
func (n *NetworkInfo) setPrefix(value string) {
	n.prefixModes = n.prefixModes[:0]
	n.prefixSymbols = n.prefixSymbols[:0]
	n.nickModes = ""

	if len(value) == 0 || value[0] != '(' {
		return
	}
	end := strings.IndexByte(value, ')')
	if end < 0 {
		return
	}
	modes, symbols := value[1:end], value[end+1:]

	for k := 0; k < len(modes) && k < len(symbols) && k < MaxPrefixes; k++ {
		n.prefixModes = append(n.prefixModes, modes[k])
		n.prefixSymbols = append(n.prefixSymbols, symbols[k])
	}
	n.nickModes = modes
}

// Classify returns the kind of a mode letter. A whenset letter only counts
// as whenset when it's being set; unset it falls through to the later
// checks.
func (n *NetworkInfo) Classify(mode byte, set bool) ModeKind {
	n.protect.RLock()
	defer n.protect.RUnlock()

	switch {
	case strings.IndexByte(n.address, mode) >= 0:
		return ModeAddress
	case strings.IndexByte(n.always, mode) >= 0:
		return ModeAlways
	case set && strings.IndexByte(n.whenset, mode) >= 0:
		return ModeWhenSet
	case strings.IndexByte(n.nickModes, mode) >= 0:
		return ModeNick
	}
	return ModeBoolean
}

// IsChannel checks to see if the target is a channel based on this instances
// chantypes.
func (n *NetworkInfo) IsChannel(target string) (isChan bool) {
	if len(target) > 0 {
		n.protect.RLock()
		isChan = strings.IndexByte(n.chantypes, target[0]) >= 0
		n.protect.RUnlock()
	}
	return
}

// ModeForSymbol translates a prefix symbol like @ to its mode letter.
func (n *NetworkInfo) ModeForSymbol(symbol byte) (byte, bool) {
	n.protect.RLock()
	defer n.protect.RUnlock()
	for i, s := range n.prefixSymbols {
		if s == symbol {
			return n.prefixModes[i], true
		}
	}
	return 0, false
}

// SymbolForMode translates a prefix mode letter like o to its symbol.
func (n *NetworkInfo) SymbolForMode(mode byte) (byte, bool) {
	n.protect.RLock()
	defer n.protect.RUnlock()
	for i, m := range n.prefixModes {
		if m == mode {
			return n.prefixSymbols[i], true
		}
	}
	return 0, false
}

// PrefixModes returns the prefix mode letters ordered from highest rank.
func (n *NetworkInfo) PrefixModes() string {
	n.protect.RLock()
	defer n.protect.RUnlock()
	return string(n.prefixModes)
}

// Chanmodes returns the four CHANMODES groups.
func (n *NetworkInfo) Chanmodes() (address, always, whenset, never string) {
	n.protect.RLock()
	defer n.protect.RUnlock()
	return n.address, n.always, n.whenset, n.never
}

// NickModes returns the letters that take a nick argument.
func (n *NetworkInfo) NickModes() string {
	n.protect.RLock()
	defer n.protect.RUnlock()
	return n.nickModes
}

// Chantypes gets the chantypes from the NetworkInfo.
func (n *NetworkInfo) Chantypes() string {
	n.protect.RLock()
	defer n.protect.RUnlock()
	return n.chantypes
}

// Casemapping gets the casemapping from the NetworkInfo.
func (n *NetworkInfo) Casemapping() string {
	n.protect.RLock()
	defer n.protect.RUnlock()
	return n.casemapping
}

// Network gets the network name, empty until the server sends it.
func (n *NetworkInfo) Network() string {
	n.protect.RLock()
	defer n.protect.RUnlock()
	return n.network
}

// Nicklen gets the nicklen from the NetworkInfo.
func (n *NetworkInfo) Nicklen() int {
	n.protect.RLock()
	defer n.protect.RUnlock()
	return n.nicklen
}

// Modes gets the number of modes allowed per MODE line.
func (n *NetworkInfo) Modes() int {
	n.protect.RLock()
	defer n.protect.RUnlock()
	return n.modes
}

// Extra gets any non-hardcoded tokens from the NetworkInfo.
func (n *NetworkInfo) Extra(key string) string {
	n.protect.RLock()
	defer n.protect.RUnlock()
	return n.extras[key]
}

// Fold case folds a nick or channel name according to the casemapping.
func (n *NetworkInfo) Fold(s string) string {
	n.protect.RLock()
	cm := n.casemapping
	n.protect.RUnlock()

	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'A' && c <= 'Z':
			b[i] = c + ('a' - 'A')
		case cm == "ascii":
		case c == '[' || c == ']' || c == '\\':
			b[i] = c + ('{' - '[')
		case c == '~' && cm != "strict-rfc1459":
			b[i] = '^'
		}
	}
	return string(b)
}

// Equal compares two names under the casemapping.
func (n *NetworkInfo) Equal(a, b string) bool {
	return len(a) == len(b) && n.Fold(a) == n.Fold(b)
}
