package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

// Payload is the typed view of a request's stored JSON.
type Payload interface {
	// Validate runs field checks before a request is stored.
	Validate() error
}

// Resolution describes how an approval changes the request's target. The
// zero value leaves it untouched.
type Resolution struct {
	TargetID *string
	Clear    bool
}

func Resolve(id string) Resolution {
	return Resolution{TargetID: &id}
}

func (r Resolution) empty() bool {
	return r.TargetID == nil && !r.Clear
}

// Materializer turns one kind of approved request into entity state.
type Materializer interface {
	Kind() types.RequestKind
	Decode(raw json.RawMessage) (Payload, error)
	// Precheck runs inside the submit transaction before the request row is
	// inserted.
	Precheck(ctx context.Context, tx store.Tx, req *types.Request, p Payload) error
	Apply(ctx context.Context, tx store.Tx, req *types.Request, p Payload, d Decision) (Resolution, error)
	// DecideFirst reports whether the request is marked APPROVED before
	// Apply runs. Kinds that delete rows set it.
	DecideFirst() bool
}

// Kind adapts typed functions to a Materializer for payload type P.
type Kind[P Payload] struct {
	Name        types.RequestKind
	Check       func(ctx context.Context, tx store.Tx, req *types.Request, p P) error
	Materialize func(ctx context.Context, tx store.Tx, req *types.Request, p P, d Decision) (Resolution, error)
	MarkFirst   bool
}

func (k Kind[P]) Kind() types.RequestKind {
	return k.Name
}

func (k Kind[P]) Decode(raw json.RawMessage) (Payload, error) {
	var p P
	if len(raw) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apperr.Storage("PAYLOAD_UNREADABLE", fmt.Errorf("failed to decode %s payload: %w", k.Name, err))
	}
	return p, nil
}

func (k Kind[P]) Precheck(ctx context.Context, tx store.Tx, req *types.Request, p Payload) error {
	if k.Check == nil {
		return nil
	}
	typed, err := k.typed(p)
	if err != nil {
		return err
	}
	return k.Check(ctx, tx, req, typed)
}

func (k Kind[P]) Apply(ctx context.Context, tx store.Tx, req *types.Request, p Payload, d Decision) (Resolution, error) {
	if k.Materialize == nil {
		return Resolution{}, nil
	}
	typed, err := k.typed(p)
	if err != nil {
		return Resolution{}, err
	}
	return k.Materialize(ctx, tx, req, typed, d)
}

func (k Kind[P]) DecideFirst() bool {
	return k.MarkFirst
}

func (k Kind[P]) typed(p Payload) (P, error) {
	typed, ok := p.(P)
	if !ok {
		var zero P
		return zero, fmt.Errorf("payload for %s has type %T", k.Name, p)
	}
	return typed, nil
}
