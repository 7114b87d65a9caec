package irc

import "strings"

// CTCP framing and quoting characters.
const (
	CTCPDelim     = '\x01'
	CTCPLowQuote  = '\x10'
	CTCPHighQuote = '\x5C'
	CTCPSep       = ' '
	// CTCPAction is the verb used for /me style messages.
	CTCPAction = "ACTION"
)

var (
	// X-DELIM --> X-QUOTE 'a', X-QUOTE --> X-QUOTE X-QUOTE
	highEscaper = strings.NewReplacer(
		"\\", "\\\\",
		"\x01", "\\a",
	)
	highUnescaper = strings.NewReplacer(
		"\\\\", "\\",
		"\\a", "\x01",
	)

	// NUL --> M-QUOTE '0', NL --> M-QUOTE 'n', CR --> M-QUOTE 'r',
	// M-QUOTE --> M-QUOTE M-QUOTE
	lowEscaper = strings.NewReplacer(
		"\x10", "\x10\x10",
		"\x00", "\x100",
		"\n", "\x10n",
		"\r", "\x10r",
	)
	lowUnescaper = strings.NewReplacer(
		"\x10\x10", "\x10",
		"\x100", "\x00",
		"\x10n", "\n",
		"\x10r", "\r",
	)
)

// IsCTCPString checks if the message is wrapped in CTCP delimiters.
func IsCTCPString(msg string) bool {
	return len(msg) >= 2 &&
		msg[0] == CTCPDelim && msg[len(msg)-1] == CTCPDelim
}

// CTCPunpackString unpacks a CTCP message into its verb and the argument text
// after the first space. The message must satisfy IsCTCPString.
func CTCPunpackString(msg string) (tag, data string) {
	msg = lowUnescaper.Replace(msg[1 : len(msg)-1])

	if i := strings.IndexByte(msg, CTCPSep); i >= 0 {
		tag, data = msg[:i], msg[i+1:]
	} else {
		tag = msg
	}

	return highUnescaper.Replace(tag), highUnescaper.Replace(data)
}

// CTCPpackString packs a verb and its argument text into CTCP format.
func CTCPpackString(tag, data string) string {
	inner := highEscaper.Replace(tag)
	if len(data) > 0 {
		inner += string(CTCPSep) + highEscaper.Replace(data)
	}

	var b strings.Builder
	b.WriteByte(CTCPDelim)
	b.WriteString(lowEscaper.Replace(inner))
	b.WriteByte(CTCPDelim)
	return b.String()
}
