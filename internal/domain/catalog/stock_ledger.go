package catalog

import (
	"fmt"
	"sort"

	"github.com/erp/posledger/internal/domain/shared"
)

// StockMove is a quantity of one product entering or leaving stock
type StockMove struct {
	ProductID int64
	Quantity  int
}

// StockLedger applies multi-product stock movements over a set of loaded
// products. A debit is checked against every product before any counter
// changes, so a failed debit leaves all products as they were.
type StockLedger struct {
	products map[int64]*Product
	touched  map[int64]struct{}
}

// NewStockLedger creates a ledger over the given products
func NewStockLedger(products ...*Product) *StockLedger {
	l := &StockLedger{
		products: make(map[int64]*Product, len(products)),
		touched:  make(map[int64]struct{}),
	}
	for _, p := range products {
		l.products[p.ID] = p
	}
	return l
}

// Product returns the ledger's product by ID
func (l *StockLedger) Product(id int64) (*Product, bool) {
	p, ok := l.products[id]
	return p, ok
}

// Debit removes every move from stock, all or nothing
func (l *StockLedger) Debit(moves []StockMove) error {
	totals, err := l.aggregate(moves)
	if err != nil {
		return err
	}

	for _, id := range sortedIDs(totals) {
		p := l.products[id]
		if !p.CanDebit(totals[id]) {
			return shared.NewInsufficientStockError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Product %s has %d in stock, %d requested", p.Code, p.StockQuantity, totals[id]))
		}
	}

	return l.apply(totals, StockOut)
}

// Credit returns every move to stock
func (l *StockLedger) Credit(moves []StockMove) error {
	totals, err := l.aggregate(moves)
	if err != nil {
		return err
	}
	return l.apply(totals, StockIn)
}

// Savepoint is the state of a ledger's products at one point in time
type Savepoint struct {
	products map[int64]Product
	touched  map[int64]struct{}
}

// Savepoint captures every product so Rollback can undo later moves
func (l *StockLedger) Savepoint() Savepoint {
	sp := Savepoint{
		products: make(map[int64]Product, len(l.products)),
		touched:  make(map[int64]struct{}, len(l.touched)),
	}
	for id, p := range l.products {
		sp.products[id] = *p
	}
	for id := range l.touched {
		sp.touched[id] = struct{}{}
	}
	return sp
}

// Rollback restores the products to sp, including stock, timestamps and
// pending events raised since
func (l *StockLedger) Rollback(sp Savepoint) {
	for id, saved := range sp.products {
		if p, ok := l.products[id]; ok {
			*p = saved
		}
	}
	l.touched = make(map[int64]struct{}, len(sp.touched))
	for id := range sp.touched {
		l.touched[id] = struct{}{}
	}
}

// Touched returns the products changed by this ledger, ordered by ID
func (l *StockLedger) Touched() []*Product {
	ids := make([]int64, 0, len(l.touched))
	for id := range l.touched {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products := make([]*Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, l.products[id])
	}
	return products
}

func (l *StockLedger) aggregate(moves []StockMove) (map[int64]int, error) {
	if len(moves) == 0 {
		return nil, shared.NewValidationError("EMPTY_MOVES", "At least one stock move is required")
	}
	totals := make(map[int64]int, len(moves))
	for _, m := range moves {
		if m.Quantity <= 0 {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if _, ok := l.products[m.ProductID]; !ok {
			return nil, shared.NewDomainError(shared.KindNotFound, "PRODUCT_NOT_FOUND",
				fmt.Sprintf("Product %d is not part of this stock ledger", m.ProductID))
		}
		totals[m.ProductID] += m.Quantity
	}
	return totals, nil
}

func (l *StockLedger) apply(totals map[int64]int, direction StockDirection) error {
	for _, id := range sortedIDs(totals) {
		if err := l.products[id].Adjust(totals[id], direction); err != nil {
			return err
		}
		l.touched[id] = struct{}{}
	}
	return nil
}

func sortedIDs(totals map[int64]int) []int64 {
	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
