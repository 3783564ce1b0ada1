package dom

import "fmt"

// PatchOp is the type of mutation operation.
type PatchOp uint8

const (
	PatchInsertNode PatchOp = 0x01 // Insert (or relocate) a node before a reference
	PatchRemoveNode PatchOp = 0x02 // Remove a node from its parent
	PatchSetText    PatchOp = 0x03 // Update text content
	PatchSetAttr    PatchOp = 0x04 // Set or update an attribute
	PatchRemoveAttr PatchOp = 0x05 // Remove an attribute
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so ops serialize readably.
func (op PatchOp) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *PatchOp) UnmarshalText(text []byte) error {
	switch string(text) {
	case "InsertNode":
		*op = PatchInsertNode
	case "RemoveNode":
		*op = PatchRemoveNode
	case "SetText":
		*op = PatchSetText
	case "SetAttr":
		*op = PatchSetAttr
	case "RemoveAttr":
		*op = PatchRemoveAttr
	default:
		return fmt.Errorf("dom: unknown patch op %q", text)
	}
	return nil
}

// Patch is a single tree mutation. A client that applies every patch in
// order holds an exact mirror of the document. An InsertNode whose NodeID is
// already known to the client is a relocation: the node moves in front of
// RefID, children intact.
type Patch struct {
	Op       PatchOp `json:"op"`
	NodeID   uint64  `json:"node"`
	ParentID uint64  `json:"parent,omitempty"`
	RefID    uint64  `json:"ref,omitempty"` // zero means append
	Tag      string  `json:"tag,omitempty"`
	Key      string  `json:"key,omitempty"`
	Value    string  `json:"value,omitempty"`
	Text     string  `json:"text,omitempty"`
}
