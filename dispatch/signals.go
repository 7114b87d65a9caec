package dispatch

// Signal names emitted by the session. Arguments are listed in order.
const (
	// Raw fires for every event: Source, String(name), String(params joined
	// by spaces), String(trailing).
	Raw = "raw"
	// Ping has no arguments.
	Ping = "ping"
	// Connect has no arguments, it fires at the end of the MOTD.
	Connect = "connect"

	// PrivateMessage is Source, String(message).
	PrivateMessage = "private_message"
	// PublicMessage is ChanUser, Channel, String(message).
	PublicMessage = "public_message"
	// PrivateAction is Source, String(text).
	PrivateAction = "private_action"
	// PublicAction is ChanUser, Channel, String(text).
	PublicAction = "public_action"
	// PrivateCTCP is Source, String(verb), String(args).
	PrivateCTCP = "private_ctcp"
	// PrivateCTCPResponse is Source, String(verb), String(args).
	PrivateCTCPResponse = "private_ctcp_response"
	// PublicCTCP is ChanUser, Channel, String(verb), String(args).
	PublicCTCP = "public_ctcp"
	// PublicCTCPResponse is ChanUser, Channel, String(verb), String(args).
	PublicCTCPResponse = "public_ctcp_response"
	// PrivateCommand is Source, String(command), String(rest).
	PrivateCommand = "private_command"
	// PublicCommand is ChanUser, Channel, String(command), String(rest).
	PublicCommand = "public_command"

	// ChannelJoin is ChanUser, Channel.
	ChannelJoin = "channel_join"
	// ChannelPart is ChanUser, Channel, String(reason). It fires before the
	// user leaves the roster.
	ChannelPart = "channel_part"
	// UserQuit is Source, String(reason).
	UserQuit = "user_quit"
	// Notice is Source, String(target), String(message).
	Notice = "notice"
	// NickChange is Source(old identity), String(new nick).
	NickChange = "nick_change"
	// Invite is Source, String(channel).
	Invite = "invite"
	// TopicChange is ChanUser, Channel, String(topic).
	TopicChange = "topic_change"
	// UserKicked is ChanUser(kicker), Channel, ChanUser(kicked),
	// String(reason). It fires before the kicked user leaves the roster.
	UserKicked = "user_kicked"

	// ScriptLoad is Script.
	ScriptLoad = "script_load"
	// ScriptUnload is Script.
	ScriptUnload = "script_unload"
)
