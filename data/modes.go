package data

import "strings"

// Flag slots cover the letters A through z.
const (
	flagFirst = 'A'
	flagLast  = 'z'
	nFlags    = flagLast - flagFirst + 1
)

// ModeFlag is the value held by one channel mode letter. A nil ModeFlag
// means the mode is unset. Exactly one of BoolFlag, StringFlag and ListFlag
// is held at a time.
type ModeFlag interface {
	modeFlag()
}

// BoolFlag is a mode that is set without a value.
type BoolFlag struct{}

// StringFlag is a mode holding a single value, like a key or a limit.
type StringFlag string

// ListFlag is a mode holding an ordered list of masks, like bans. It is
// never empty; an empty list is stored as unset.
type ListFlag []string

func (BoolFlag) modeFlag()   {}
func (StringFlag) modeFlag() {}
func (ListFlag) modeFlag()   {}

// flagIndex maps a mode letter to its slot.
func flagIndex(mode byte) (int, bool) {
	if mode < flagFirst || mode > flagLast {
		return 0, false
	}
	return int(mode - flagFirst), true
}

// Modes is the fixed array of flag slots for one channel.
type Modes [nFlags]ModeFlag

// Get returns the flag for a mode letter or nil.
func (m *Modes) Get(mode byte) ModeFlag {
	i, ok := flagIndex(mode)
	if !ok {
		return nil
	}
	return m[i]
}

// IsSet checks if a mode letter holds any value.
func (m *Modes) IsSet(mode byte) bool {
	return m.Get(mode) != nil
}

// Arg returns the value of a StringFlag or empty string.
func (m *Modes) Arg(mode byte) string {
	if s, ok := m.Get(mode).(StringFlag); ok {
		return string(s)
	}
	return ""
}

// List returns a copy of the masks of a ListFlag.
func (m *Modes) List(mode byte) []string {
	l, ok := m.Get(mode).(ListFlag)
	if !ok {
		return nil
	}
	cp := make([]string, len(l))
	copy(cp, l)
	return cp
}

func (m *Modes) set(i int, f ModeFlag) {
	m[i] = f
}

func (m *Modes) clear(i int) {
	m[i] = nil
}

// addAddress appends a mask, creating the list if needed.
func (m *Modes) addAddress(i int, mask string) {
	l, _ := m[i].(ListFlag)
	m[i] = append(l, mask)
}

// removeAddress deletes the first case insensitive match of a mask. The slot
// is cleared when the list runs out.
func (m *Modes) removeAddress(i int, mask string) {
	l, ok := m[i].(ListFlag)
	if !ok {
		return
	}
	for j, entry := range l {
		if strings.EqualFold(entry, mask) {
			l = append(l[:j:j], l[j+1:]...)
			break
		}
	}
	if len(l) == 0 {
		m[i] = nil
		return
	}
	m[i] = l
}

// String renders the set modes as a modestring with arguments, for example
// "+kmn key". List modes are left out, they are not part of a 324 reply.
func (m *Modes) String() string {
	var letters []byte
	var args []string
	for i, f := range m {
		switch v := f.(type) {
		case BoolFlag:
			letters = append(letters, byte(i+flagFirst))
		case StringFlag:
			letters = append(letters, byte(i+flagFirst))
			args = append(args, string(v))
		}
	}
	if len(letters) == 0 {
		return ""
	}

	s := "+" + string(letters)
	if len(args) > 0 {
		s += " " + strings.Join(args, " ")
	}
	return s
}

// ListModes returns the letters currently holding a list.
func (m *Modes) ListModes() string {
	var letters []byte
	for i, f := range m {
		if _, ok := f.(ListFlag); ok {
			letters = append(letters, byte(i+flagFirst))
		}
	}
	return string(letters)
}
