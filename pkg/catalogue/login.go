package catalogue

import "github.com/vango-dev/mcproto/pkg/schema"

// nextState is the state requested by the handshake. Index 0 is unused on
// the wire; 1 is status and 2 is login.
var nextState = schema.Union("NextState",
	schema.Unit("None"),
	schema.Unit("Status"),
	schema.Unit("Login"),
)

var handshakeToServer = schema.Union("HandshakeToServer",
	packet("Handshake",
		f("proto_version", varint),
		f("server_address", str),
		f("server_port", u16),
		f("next_state", nextState),
	),
)

var statusToServer = schema.Union("StatusToServer",
	schema.Unit("StatusRequest"),
	packet("Ping", f("time", i64)),
)

var statusToClient = schema.Union("StatusToClient",
	packet("StatusResponse", f("response", str)),
	packet("Pong", f("time", i64)),
)

var loginToServer = schema.Union("LoginToServer",
	packet("LoginStart", f("name", str)),
	packet("EncryptionResponse",
		f("shared_secret", bytes16),
		f("verify_token", bytes16),
	),
)

var loginToClient = schema.Union("LoginToClient",
	packet("Disconnect", f("reason", chat)),
	packet("EncryptionRequest",
		f("server_id", str),
		f("pubkey", bytes16),
		f("verify_token", bytes16),
	),
	packet("LoginSuccess",
		f("uuid", schema.UUID()),
		f("username", str),
	),
)
