package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (M100-M119)
	// ============================================

	"M100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No mcproto.toml was found in the given directory or any parent directory.",
	},
	"M101": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The config file is not valid TOML or a value has the wrong type.",
	},
	"M102": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A config value is out of range or inconsistent with another setting.",
	},
	"M103": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		Detail:   "Durations use Go syntax such as \"500ms\", \"30s\" or \"2m\".",
	},

	// ============================================
	// CLI Errors (M140-M149)
	// ============================================

	"M140": {
		Category: CategoryCLI,
		Message:  "Invalid hex input",
		Detail:   "Input must be hexadecimal digits. Spaces, newlines and colons are ignored.",
	},
	"M141": {
		Category: CategoryCLI,
		Message:  "Unknown phase",
		Detail:   "Valid phases are handshake, status, login and play.",
	},
	"M142": {
		Category: CategoryCLI,
		Message:  "Unknown direction",
		Detail:   "Valid directions are serverbound (server, c2s) and clientbound (client, s2c).",
	},
	"M143": {
		Category: CategoryCLI,
		Message:  "Unknown packet",
		Detail:   "No packet with that id or name exists in the selected phase and direction.",
	},
	"M144": {
		Category: CategoryCLI,
		Message:  "Listen failed",
		Detail:   "The proxy or HTTP listener could not bind its address.",
	},

	// ============================================
	// Capture Errors (M150-M159)
	// ============================================

	"M150": {
		Category: CategoryCapture,
		Message:  "Capture file unreadable",
		Detail:   "The capture file is missing, truncated or not an mcproto capture.",
	},
	"M151": {
		Category: CategoryCapture,
		Message:  "Capture upload failed",
		Detail:   "The object store rejected the upload or could not be reached.",
	},

	// ============================================
	// Wire Errors (M160-M179)
	// ============================================

	"M160": {
		Category: CategoryWire,
		Message:  "Truncated input",
		Detail:   "The input ended before the value was complete.",
	},
	"M161": {
		Category: CategoryWire,
		Message:  "Malformed VarInt",
		Detail:   "A variable-length integer ran past its maximum width.",
	},
	"M162": {
		Category: CategoryWire,
		Message:  "Malformed identifier",
		Detail:   "A textual UUID was not 36 characters of hyphenated hexadecimal.",
	},
	"M163": {
		Category: CategoryWire,
		Message:  "Unsupported shape",
		Detail:   "The value names a packet or variant that does not exist, or the shape cannot be carried on the wire.",
	},
	"M164": {
		Category: CategoryWire,
		Message:  "I/O failure",
		Detail:   "The underlying stream failed.",
	},
	"M165": {
		Category: CategoryWire,
		Message:  "Embedded document error",
		Detail:   "An embedded NBT document could not be decoded or encoded.",
	},
	"M166": {
		Category: CategoryWire,
		Message:  "Malformed input",
		Detail:   "The bytes violate the wire format: a bad boolean, invalid UTF-8, a negative length or trailing bytes.",
	},
	"M167": {
		Category: CategoryWire,
		Message:  "Limit exceeded",
		Detail:   "A length, count or nesting depth exceeds the configured limits.",
	},
	"M168": {
		Category: CategoryWire,
		Message:  "Value mismatch",
		Detail:   "The value does not fit the shape it is being encoded as.",
	},
	"M169": {
		Category: CategoryWire,
		Message:  "Wire error",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
