package register

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IRegister is the generic interface for interacting with keyed latest-value
// registers. All write operations return only an error (nil on success),
// while read operations return the requested data along with an error.
type IRegister interface {
	// Set publishes a new latest value for a key. The key is created on
	// first use.
	Set(key string, value []byte) (err error)
	// Swap publishes a new latest value for a key and returns the value that
	// was current before the call. The boolean return value indicates whether
	// the key existed before the call; on first use prev is nil.
	Swap(key string, value []byte) (prev []byte, loaded bool, err error)
	// Get returns the latest value for a key. The boolean return value
	// indicates whether the key exists.
	Get(key string) (value []byte, loaded bool, err error)
	// Has returns whether a key exists in the register.
	Has(key string) (loaded bool, err error)
	// Drop removes a key and releases its retained history. Dropping an
	// unknown key is a no-op. Drop must not race with other operations on
	// the same key.
	Drop(key string) (err error)
	// GetInfo returns metadata about the register. It is not guaranteed that
	// all fields are filled in or that the information is up-to-date!
	GetInfo() (info RegisterInfo, err error)
	// Close releases all registers and stops background reclamation.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Metadata
// --------------------------------------------------------------------------

// RegisterInfo holds metadata about a register implementation.
type RegisterInfo struct {
	NumKeys         int    `json:"num_keys"`          // Number of live keys
	Writes          uint64 `json:"writes"`            // Total number of Set/Swap operations
	RetainedNodes   int    `json:"retained_nodes"`    // History entries not yet reclaimed (tails included)
	AvgValueSize    int    `json:"avg_value_size"`    // Average published value size in bytes
	MedianValueSize int    `json:"median_value_size"` // Estimated median value size in bytes
	Metadata        any    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCUnsupportedOperation:
		errorCode = "UnsupportedOperation"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("RegisterError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by the implementation.
	RetCInvalidOperation                    // 3: Invalid operation.
)
