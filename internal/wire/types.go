package wire

import (
	json "github.com/goccy/go-json"

	"github.com/kevinxiao27/vlist/ot"
	"github.com/kevinxiao27/vlist/vlist"
)

// Envelope types, sent as Envelope.Type.
const (
	TypeInit   = "init"   // server -> client, Data is Snapshot
	TypeSubmit = "submit" // client -> server, Data is Submit
	TypeResult = "result" // server -> client, Data is Result
	TypeChange = "change" // server -> client, Data is Change
	TypeError  = "error"  // server -> client, Data is Error
)

// Op is the wire shape of ot.Op[string].
type Op struct {
	Kind  ot.OpType `json:"kind"`
	Index int       `json:"index,omitempty"`
	To    int       `json:"to,omitempty"`
	Value string    `json:"value,omitempty"`
}

type Submit struct {
	ListID      string `json:"listId,omitempty"`
	BaseVersion int    `json:"baseVersion"`
	Op          Op     `json:"op"`
}

// Result answers a Submit. Op is the operation as committed and is omitted
// when nothing was committed.
type Result struct {
	ListID  string        `json:"listId"`
	Outcome vlist.Outcome `json:"outcome"`
	Version int           `json:"version"`
	Op      *Op           `json:"op,omitempty"`
}

// Change announces one committed operation, Noop placeholders included.
type Change struct {
	ListID  string `json:"listId"`
	Version int    `json:"version"`
	Op      Op     `json:"op"`
}

type Snapshot struct {
	ListID          string   `json:"listId"`
	Version         int      `json:"version"`
	MinValidVersion int      `json:"minValidVersion"`
	Items           []string `json:"items"`
}

type Error struct {
	Message string `json:"message"`
}

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
