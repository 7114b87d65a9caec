package irc

// IRC Messages, these messages are 1-1 constant to string lookups for ease of
// use when switching on event names.
const (
	PASS    = "PASS"
	NICK    = "NICK"
	USER    = "USER"
	PING    = "PING"
	PONG    = "PONG"
	PRIVMSG = "PRIVMSG"
	NOTICE  = "NOTICE"
	JOIN    = "JOIN"
	PART    = "PART"
	QUIT    = "QUIT"
	MODE    = "MODE"
	INVITE  = "INVITE"
	TOPIC   = "TOPIC"
	KICK    = "KICK"
	WHO     = "WHO"
	ERROR   = "ERROR"
)

// IRC Numerics the event core understands. The value is the numeric code, the
// Event.Name of a numeric event is the zero padded three digit form.
const (
	RPL_WELCOME         = 1
	RPL_ISUPPORT        = 5
	RPL_ENDOFWHO        = 315
	RPL_CHANNELMODEIS   = 324
	RPL_CREATIONTIME    = 329
	RPL_TOPIC           = 332
	RPL_TOPICWHOTIME    = 333
	RPL_WHOREPLY        = 352
	RPL_ENDOFMOTD       = 376
	ERR_NOMOTD          = 422
	ERR_NICKNAMEINUSE   = 433
	ERR_ERRONEUSNICK    = 432
	ERR_UNAVAILRESOURCE = 437
)
