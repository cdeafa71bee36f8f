package wire

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/kevinxiao27/vlist/ol"
	"github.com/kevinxiao27/vlist/ot"
	"github.com/kevinxiao27/vlist/util"
	"github.com/kevinxiao27/vlist/vlist"
)

var ErrUnknownKind = errors.New("wire: unknown operation kind")

func EncodeOp(op ot.Op[string]) Op {
	return Op{
		Kind:  op.Kind(),
		Index: op.Index(),
		To:    op.To(),
		Value: op.Value(),
	}
}

// DecodeOp validates m through the ot constructors, so negative indices are
// rejected here rather than reaching a list.
func DecodeOp(m Op) (ot.Op[string], error) {
	switch m.Kind {
	case ot.Insert:
		return ot.NewInsert(m.Index, m.Value)
	case ot.Remove:
		return ot.NewRemove[string](m.Index)
	case ot.Modify:
		return ot.NewModify(m.Index, m.Value)
	case ot.Move:
		return ot.NewMove[string](m.Index, m.To)
	case ot.Clear:
		return ot.NewClear[string](), nil
	case ot.Noop:
		return ot.NoopOp[string](), nil
	default:
		return ot.Op[string]{}, fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
}

func NewChange(listID string, e ol.Entry[string]) Change {
	return Change{ListID: listID, Version: e.Version, Op: EncodeOp(e.Op)}
}

func NewChanges(listID string, entries []ol.Entry[string]) []Change {
	return util.Map(entries, func(e ol.Entry[string]) Change {
		return NewChange(listID, e)
	})
}

func NewSnapshot(listID string, s vlist.State[string]) Snapshot {
	return Snapshot{
		ListID:          listID,
		Version:         s.Version(),
		MinValidVersion: s.MinValidVersion(),
		Items:           s.Items(),
	}
}

func NewResult(listID string, version int, op *ot.Op[string], outcome vlist.Outcome) Result {
	r := Result{ListID: listID, Outcome: outcome, Version: version}
	if op != nil {
		m := EncodeOp(*op)
		r.Op = &m
	}
	return r
}

// Marshal wraps data in an Envelope of the given type.
func Marshal(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", typ, err)
	}
	return json.Marshal(Envelope{Type: typ, Data: raw})
}

func Unmarshal(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

// Decode unmarshals the envelope payload into v.
func (env Envelope) Decode(v any) error {
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return nil
}
