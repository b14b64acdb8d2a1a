package errors

// ErrorCode represents a unique identifier for error and warning types.
// Codes are organized by category:
//   - E1xxx: Program document errors (front end)
//   - E2xxx: Compile errors
//   - W1xxx: Compile warnings
type ErrorCode string

const (
	// Program document errors (E1xxx)
	E1001 ErrorCode = "E1001" // Invalid document
	E1002 ErrorCode = "E1002" // Unknown statement
	E1003 ErrorCode = "E1003" // Invalid condition
	E1004 ErrorCode = "E1004" // Invalid declaration

	// Compile errors (E2xxx)
	E2001 ErrorCode = "E2001" // Incompatible type
	E2002 ErrorCode = "E2002" // Unsupported operation
	E2003 ErrorCode = "E2003" // Malformed command template
	E2004 ErrorCode = "E2004" // Invariant violation
	E2005 ErrorCode = "E2005" // Invalid symbol name
	E2006 ErrorCode = "E2006" // Undefined variable
	E2007 ErrorCode = "E2007" // Undefined function

	// Warnings (W1xxx)
	W1001 ErrorCode = "W1001" // Precision loss
	W1002 ErrorCode = "W1002" // Type assumption
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "invalid document",
	E1002: "unknown statement",
	E1003: "invalid condition",
	E1004: "invalid declaration",

	E2001: "incompatible type",
	E2002: "unsupported operation",
	E2003: "malformed command template",
	E2004: "invariant violation",
	E2005: "invalid symbol name",
	E2006: "undefined variable",
	E2007: "undefined function",

	W1001: "precision loss",
	W1002: "type assumption",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	if c[0] == 'W' {
		return "warning"
	}
	switch c[1] {
	case '1':
		return "document"
	case '2':
		return "compile"
	default:
		return "unknown"
	}
}
