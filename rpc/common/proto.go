package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   string `json:"key,omitempty"`   // Used for: Set, Swap, Get, Has, Drop
	Value []byte `json:"value,omitempty"` // Used for: Set, Swap (request), Get, Swap (response)

	// Response only fields
	Ok  bool   `json:"ok,omitempty"`  // Used for: Get, Has, Swap responses
	Err string `json:"err,omitempty"` // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: Info responses (JSON encoded register.RegisterInfo)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewSetRequest creates a new Set request
func NewSetRequest(key string, value []byte) *Message {
	return &Message{
		MsgType: MsgTRegSet,
		Key:     key,
		Value:   value,
	}
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTRegSet,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewSwapRequest creates a new Swap request
func NewSwapRequest(key string, value []byte) *Message {
	return &Message{
		MsgType: MsgTRegSwap,
		Key:     key,
		Value:   value,
	}
}

// NewSwapResponse creates a new Swap response
func NewSwapResponse(prev []byte, loaded bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTRegSwap,
		Value:   prev,
		Ok:      loaded,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTRegGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTRegGet,
		Ok:      ok,
		Value:   value,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewHasRequest creates a new Has request
func NewHasRequest(key string) *Message {
	return &Message{
		MsgType: MsgTRegHas,
		Key:     key,
	}
}

// NewHasResponse creates a new Has response
func NewHasResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTRegHas,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDropRequest creates a new Drop request
func NewDropRequest(key string) *Message {
	return &Message{
		MsgType: MsgTRegDrop,
		Key:     key,
	}
}

// NewDropResponse creates a new Drop response
func NewDropResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTRegDrop,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewInfoRequest creates a new Info request
func NewInfoRequest() *Message {
	return &Message{
		MsgType: MsgTRegInfo,
	}
}

// NewInfoResponse creates a new Info response. The info parameter is JSON
// encoded into the Meta field.
func NewInfoResponse(info any, err error) *Message {
	msg := &Message{
		MsgType: MsgTRegInfo,
	}
	if err != nil {
		msg.Err = err.Error()
		return msg
	}

	meta, jsonErr := json.Marshal(info)
	if jsonErr != nil {
		msg.Err = jsonErr.Error()
		return msg
	}
	msg.Meta = meta
	return msg
}

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
}

// NewCustomResponse creates a new Custom response
func NewCustomResponse(meta []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTRegSet:
		return "set"
	case MsgTRegSwap:
		return "swap"
	case MsgTRegGet:
		return "get"
	case MsgTRegHas:
		return "has"
	case MsgTRegDrop:
		return "drop"
	case MsgTRegInfo:
		return "info"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "set":
		*t = MsgTRegSet
	case "swap":
		*t = MsgTRegSwap
	case "get":
		*t = MsgTRegGet
	case "has":
		*t = MsgTRegHas
	case "drop":
		*t = MsgTRegDrop
	case "info":
		*t = MsgTRegInfo
	case "custom":
		*t = MsgTCustom
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IRegister operations

	MsgTRegSet  // Publish a new latest value for a key
	MsgTRegSwap // Publish a new latest value and return the previous one
	MsgTRegGet  // Get the latest value of a key
	MsgTRegHas  // Check if a key exists
	MsgTRegDrop // Drop a key and its retained history
	MsgTRegInfo // Query register metadata

	// Custom operations

	MsgTCustom // Custom operation type
)
