package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Pilves/dot/pkg/reactive"
)

// Bind connects a cell to a store key. If the key exists, its JSON value
// replaces the cell's current value before the effect mounts; afterwards
// every change to the cell is saved back, best-effort. The returned effect
// handle stops persistence when disposed.
//
// Bind only calls the cell's Get and Set; it knows nothing about the
// reactive internals.
func Bind[T any](ctx context.Context, rt *reactive.Runtime, cell *reactive.Cell[T], store Store, key string) (*reactive.Effect, error) {
	data, ok, err := store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("persist: load %q: %w", key, err)
	}
	if ok {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("persist: decode %q: %w", key, err)
		}
		cell.Set(v)
	}

	eff := reactive.NewEffect(rt, func() reactive.Cleanup {
		v := cell.Get()
		data, err := json.Marshal(v)
		if err != nil {
			rt.Logger().Warn("persist: encode failed", "key", key, "error", err)
			return nil
		}
		if err := store.Save(ctx, key, data); err != nil {
			rt.Logger().Warn("persist: save failed", "key", key, "error", err)
		}
		return nil
	})
	return eff, nil
}
