package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Engine owns one cart's active and saved lists. Every mutation writes the affected
// slots to the store before it returns; when that write fails the in-memory state is
// left exactly as it was. Mutations report whether anything changed so callers can
// tell a no-op from a real transition.
type Engine struct {
	mu     sync.RWMutex
	store  SlotStore
	key    string
	active []Line
	saved  []Line
}

// NewEngine returns an empty cart bound to key. Use Restore to load persisted state.
func NewEngine(store SlotStore, key string) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("slot store required")
	}
	if key == "" {
		return nil, fmt.Errorf("cart key required")
	}
	return &Engine{store: store, key: key}, nil
}

func (e *Engine) Key() string {
	return e.key
}

// State returns a deep copy of both lists.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return State{Active: cloneLines(e.active), Saved: cloneLines(e.saved)}
}

// Total is the sum of price times quantity over the active list.
func (e *Engine) Total() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return totalOf(e.active)
}

// ItemCount is the number of units in the active list.
func (e *Engine) ItemCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	count := 0
	for _, l := range e.active {
		count += l.Quantity
	}
	return count
}

func totalOf(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// AddItem increments the active line for product or appends it with quantity 1.
// A product sitting in the saved list is taken out of it first.
func (e *Engine) AddItem(ctx context.Context, product Product) (bool, error) {
	if product.ProductID == "" {
		return false, fmt.Errorf("product id required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	active := cloneLines(e.active)
	saved := e.saved
	touchSaved := false
	if idx := indexOf(saved, product.ProductID); idx >= 0 {
		saved = without(saved, idx)
		touchSaved = true
	}
	if idx := indexOf(active, product.ProductID); idx >= 0 {
		active[idx].Quantity++
	} else {
		active = append(active, product.toLine(1))
	}

	if touchSaved {
		return true, e.commit(ctx, active, saved)
	}
	return true, e.commit(ctx, active, nil)
}

// IncreaseQuantity bumps an active line by one. Unknown ids are a no-op.
func (e *Engine) IncreaseQuantity(ctx context.Context, productID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := cloneLines(e.active)
	idx := indexOf(active, productID)
	if idx >= 0 {
		active[idx].Quantity++
	}
	return idx >= 0, e.commit(ctx, active, nil)
}

// DecreaseQuantity drops an active line by one and removes it when it reaches zero.
func (e *Engine) DecreaseQuantity(ctx context.Context, productID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := cloneLines(e.active)
	idx := indexOf(active, productID)
	if idx >= 0 {
		if active[idx].Quantity <= 1 {
			active = without(active, idx)
		} else {
			active[idx].Quantity--
		}
	}
	return idx >= 0, e.commit(ctx, active, nil)
}

// RemoveFromCart deletes the active line for productID if present.
func (e *Engine) RemoveFromCart(ctx context.Context, productID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := e.active
	idx := indexOf(active, productID)
	if idx >= 0 {
		active = without(active, idx)
	}
	return idx >= 0, e.commit(ctx, cloneLines(active), nil)
}

// MoveToSaved moves an active line, quantity included, to the end of the saved list.
func (e *Engine) MoveToSaved(ctx context.Context, productID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := cloneLines(e.active)
	saved := cloneLines(e.saved)
	idx := indexOf(active, productID)
	if idx >= 0 {
		line := active[idx]
		active = without(active, idx)
		if existing := indexOf(saved, productID); existing >= 0 {
			saved[existing].Quantity += line.Quantity
		} else {
			saved = append(saved, line)
		}
	}
	return idx >= 0, e.commit(ctx, active, saved)
}

// MoveToCart moves a saved line back into the active list, merging with an existing
// active line for the same product.
func (e *Engine) MoveToCart(ctx context.Context, productID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := cloneLines(e.active)
	saved := cloneLines(e.saved)
	idx := indexOf(saved, productID)
	if idx >= 0 {
		line := saved[idx]
		saved = without(saved, idx)
		if existing := indexOf(active, productID); existing >= 0 {
			active[existing].Quantity += line.Quantity
		} else {
			active = append(active, line)
		}
	}
	return idx >= 0, e.commit(ctx, active, saved)
}

// commit persists the given lists and swaps them in. A nil saved leaves that slot
// untouched.
func (e *Engine) commit(ctx context.Context, active, saved []Line) error {
	slots := make(map[string][]byte, 2)
	blob, err := encodeLines(active)
	if err != nil {
		return err
	}
	slots[SlotActive] = blob
	if saved != nil {
		blob, err := encodeLines(saved)
		if err != nil {
			return err
		}
		slots[SlotSaved] = blob
	}
	if err := e.store.Save(ctx, e.key, slots); err != nil {
		return err
	}
	e.active = active
	if saved != nil {
		e.saved = saved
	}
	return nil
}

func encodeLines(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}
	blob, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode cart lines: %w", err)
	}
	return blob, nil
}
