package wire

import "encoding/json"

// Wire-level type discriminators for client -> server envelopes.
const (
	TypeResponse = "RESP"
	TypeCommand  = "CMD"
)

// Field bag keys. A deployment speaks exactly one of them.
const (
	BagMap  = "Map"
	BagData = "Data"
)

// Argument keys carried in an inbound field bag.
const (
	FieldSelector  = "Selector"
	FieldElement   = "Element"
	FieldClass     = "Class"
	FieldID        = "Id"
	FieldAttribute = "Attribute"
	FieldValue     = "Value"
	FieldProperty  = "Property"
	FieldText      = "Text"
	FieldHTML      = "HTML"
	FieldHref      = "Href"
	FieldTarget    = "Target"
	FieldOnClick   = "OnClick"
	FieldFocus     = "Focus"
	FieldScroll    = "Scroll"
	FieldResponse  = "Response"
)

// Command is a single decoded instruction.
type Command struct {
	Name     string
	Selector string
	Args     map[string]string
}

// Arg returns the named argument, or "" when absent.
func (c Command) Arg(key string) string {
	if c.Args == nil {
		return ""
	}
	return c.Args[key]
}

// Flag reports whether the named argument is the literal "true".
func (c Command) Flag(key string) bool {
	return c.Arg(key) == "true"
}

// Inbound is the structured server -> client envelope. Map and Data are
// alternate schema versions of the same field bag.
type Inbound struct {
	Type string                     `json:"Type"`
	Map  map[string]json.RawMessage `json:"Map,omitempty"`
	Data map[string]json.RawMessage `json:"Data,omitempty"`
}

// Response is the envelope variant of an upstream query result.
type Response struct {
	Type string            `json:"Type"`
	Map  map[string]string `json:"Map"`
}

// NewResponse wraps a query result in a RESP envelope.
func NewResponse(value string) Response {
	return Response{
		Type: TypeResponse,
		Map:  map[string]string{FieldResponse: value},
	}
}

// Input is the structured variant of user input sent upstream.
type Input struct {
	Type string   `json:"Type"`
	Args []string `json:"Args"`
}

// NewInput wraps tokenized user input in a CMD envelope.
func NewInput(args []string) Input {
	if args == nil {
		args = []string{}
	}
	return Input{Type: TypeCommand, Args: args}
}
