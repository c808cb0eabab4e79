package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/internal/storage"
	"github.com/Allengabo/Yankicks-web/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SnapshotKey is where the serialized cart lives in the store.
const SnapshotKey = "yankicks_cart"

var ErrCartLocked = errors.New("cart is locked while checkout is in progress")

// Engine owns the shopping cart. Every mutation writes the new snapshot before
// it becomes visible in memory, so the in-memory lines and the stored snapshot
// never disagree after a call returns.
type Engine struct {
	mu     sync.Mutex
	store  storage.Store
	lines  []domain.CartLine
	frozen bool
}

// Load restores the cart from the store. A missing snapshot is an empty cart;
// an unreadable one is logged and discarded.
func Load(ctx context.Context, store storage.Store) (*Engine, error) {
	e := &Engine{store: store}

	data, err := store.Get(ctx, SnapshotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return e, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart snapshot: %w", err)
	}

	var lines []domain.CartLine
	if errUnmarshal := json.Unmarshal(data, &lines); errUnmarshal != nil {
		logger.FromContext(ctx).Warn("discarding unreadable cart snapshot", zap.Error(errUnmarshal))
		return e, nil
	}
	e.lines = normalize(lines)
	return e, nil
}

// AddItem puts one more unit of product into the cart. A nil product is ignored.
func (e *Engine) AddItem(ctx context.Context, product *domain.Product) error {
	if product == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frozen {
		return ErrCartLocked
	}

	next := e.copyLines()
	if i := indexOf(next, product.ID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, domain.CartLine{Product: *product, Quantity: 1})
	}
	return e.commit(ctx, next)
}

// UpdateQuantity adds delta to the line's quantity. Lines that drop to zero
// or below are removed. Unknown product ids are ignored.
func (e *Engine) UpdateQuantity(ctx context.Context, productID int64, delta int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frozen {
		return ErrCartLocked
	}

	next := e.copyLines()
	i := indexOf(next, productID)
	if i < 0 {
		return nil
	}

	next[i].Quantity += delta
	if next[i].Quantity <= 0 {
		next = append(next[:i], next[i+1:]...)
	}
	return e.commit(ctx, next)
}

func (e *Engine) RemoveItem(ctx context.Context, productID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frozen {
		return ErrCartLocked
	}

	next := e.copyLines()
	if i := indexOf(next, productID); i >= 0 {
		next = append(next[:i], next[i+1:]...)
	}
	return e.commit(ctx, next)
}

// Clear empties the cart and drops the snapshot. Used after a recorded checkout,
// so it is allowed while the cart is frozen.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Delete(ctx, SnapshotKey); err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	e.lines = nil
	return nil
}

// Freeze blocks add/update/remove until Unfreeze is called.
func (e *Engine) Freeze() {
	e.mu.Lock()
	e.frozen = true
	e.mu.Unlock()
}

func (e *Engine) Unfreeze() {
	e.mu.Lock()
	e.frozen = false
	e.mu.Unlock()
}

func (e *Engine) Lines() []domain.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyLines()
}

// Total is the exact sum of price x quantity; rounding is left to display.
func (e *Engine) Total() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Total(e.lines)
}

func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, l := range e.lines {
		count += l.Quantity
	}
	return count
}

func (e *Engine) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines) == 0
}

func Total(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (e *Engine) commit(ctx context.Context, next []domain.CartLine) error {
	if next == nil {
		next = []domain.CartLine{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := e.store.Put(ctx, SnapshotKey, data); err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}
	e.lines = next
	return nil
}

func (e *Engine) copyLines() []domain.CartLine {
	out := make([]domain.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

func indexOf(lines []domain.CartLine, productID int64) int {
	for i := range lines {
		if lines[i].ID == productID {
			return i
		}
	}
	return -1
}

// normalize merges duplicate product lines and drops non-positive quantities
// from a snapshot written by something other than the engine.
func normalize(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := indexOf(out, l.ID); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}
