//go:build unit

// Package fake provides an in-memory shared.UnitOfWork for engine and sweeper
// tests. Transactions snapshot the whole store and roll back on error, so the
// claim-then-fail paths behave like the real thing.
package fake

import (
	"context"
	"sort"
	"sync"
	"time"

	"stockroom/internal/domain/hold"
	"stockroom/internal/domain/inventory"
	"stockroom/internal/domain/order"
	"stockroom/internal/infra"
	"stockroom/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type unitRow struct {
	id         uuid.UUID
	productID  uuid.UUID
	state      inventory.State
	holdID     uuid.UUID
	heldSeq    int64
	payload    string
	createdSeq int64
}

type holdRow struct {
	id        uuid.UUID
	cartID    uuid.UUID
	productID uuid.UUID
	status    hold.Status
	expiresAt time.Time
	createdAt time.Time
}

type orderRow struct {
	id               uuid.UUID
	cartID           uuid.UUID
	ownerID          string
	holdIDs          []uuid.UUID
	status           order.Status
	reserveExpiresAt time.Time
	createdAt        time.Time
	paidAt           *time.Time
}

type Store struct {
	mu        sync.Mutex
	units     map[uuid.UUID]*unitRow
	holds     map[uuid.UUID]*holdRow
	orders    map[uuid.UUID]*orderRow
	carts     map[uuid.UUID]string
	claimSeq  int64
	createSeq int64
}

func NewStore() *Store {
	return &Store{
		units:  make(map[uuid.UUID]*unitRow),
		holds:  make(map[uuid.UUID]*holdRow),
		orders: make(map[uuid.UUID]*orderRow),
		carts:  make(map[uuid.UUID]string),
	}
}

// SeedUnits registers count available units for the product and returns their
// ids in creation order.
func (s *Store) SeedUnits(productID uuid.UUID, count int) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uuid.UUID, count)
	for i := range ids {
		s.createSeq++
		id := uuid.New()
		s.units[id] = &unitRow{
			id:         id,
			productID:  productID,
			state:      inventory.StateAvailable,
			payload:    "payload-" + id.String()[:8],
			createdSeq: s.createSeq,
		}
		ids[i] = id
	}
	return ids
}

func (s *Store) UnitState(unitID uuid.UUID) (inventory.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[unitID]
	if !ok {
		return "", false
	}
	return u.state, true
}

func (s *Store) HoldStatus(holdID uuid.UUID) (hold.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[holdID]
	if !ok {
		return "", false
	}
	return h.status, true
}

func (s *Store) OrderStatus(orderID uuid.UUID) (order.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return "", false
	}
	return o.status, true
}

func (s *Store) snapshot() (map[uuid.UUID]*unitRow, map[uuid.UUID]*holdRow, map[uuid.UUID]*orderRow, map[uuid.UUID]string) {
	units := make(map[uuid.UUID]*unitRow, len(s.units))
	for id, u := range s.units {
		cp := *u
		units[id] = &cp
	}
	holds := make(map[uuid.UUID]*holdRow, len(s.holds))
	for id, h := range s.holds {
		cp := *h
		holds[id] = &cp
	}
	orders := make(map[uuid.UUID]*orderRow, len(s.orders))
	for id, o := range s.orders {
		cp := *o
		cp.holdIDs = append([]uuid.UUID(nil), o.holdIDs...)
		orders[id] = &cp
	}
	carts := make(map[uuid.UUID]string, len(s.carts))
	for id, owner := range s.carts {
		carts[id] = owner
	}
	return units, holds, orders, carts
}

type UoW struct {
	store *Store
}

func NewUoW(store *Store) shared.UnitOfWork {
	return &UoW{store: store}
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	units, holds, orders, carts := u.store.snapshot()
	if err := fn(ctx, &tx{store: u.store}); err != nil {
		u.store.units = units
		u.store.holds = holds
		u.store.orders = orders
		u.store.carts = carts
		return err
	}
	return nil
}

func (u *UoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(ctx, &tx{store: u.store})
}

type tx struct {
	store *Store
}

func (t *tx) Carts() shared.CartRepository   { return &cartRepo{t.store} }
func (t *tx) Units() shared.UnitRepository   { return &unitRepo{t.store} }
func (t *tx) Holds() shared.HoldRepository   { return &holdRepo{t.store} }
func (t *tx) Orders() shared.OrderRepository { return &orderRepo{t.store} }

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, pgx.ErrNoRows, infra.KindNotFound)
}

type cartRepo struct{ s *Store }

// holdInPendingOrder mirrors the order_holds exclusion the SQL store applies.
// Callers already hold the store lock through the unit of work.
func (s *Store) holdInPendingOrder(holdID uuid.UUID) bool {
	for _, o := range s.orders {
		if o.status != order.StatusPendingPayment {
			continue
		}
		for _, id := range o.holdIDs {
			if id == holdID {
				return true
			}
		}
	}
	return false
}

func (r *cartRepo) Ensure(_ context.Context, cartID uuid.UUID, ownerID string) error {
	if _, ok := r.s.carts[cartID]; !ok {
		r.s.carts[cartID] = ownerID
	}
	return nil
}

func (r *cartRepo) OwnerID(_ context.Context, cartID uuid.UUID) (string, error) {
	owner, ok := r.s.carts[cartID]
	if !ok {
		return "", notFound("cart not found")
	}
	return owner, nil
}

type unitRepo struct{ s *Store }

func (r *unitRepo) CountAvailable(_ context.Context, productID uuid.UUID) (int, error) {
	n := 0
	for _, u := range r.s.units {
		if u.productID == productID && u.state == inventory.StateAvailable {
			n++
		}
	}
	return n, nil
}

func (r *unitRepo) ClaimOldest(_ context.Context, productID, holdID uuid.UUID, qty int) ([]shared.ClaimedUnit, error) {
	var pool []*unitRow
	for _, u := range r.s.units {
		if u.productID == productID && u.state == inventory.StateAvailable {
			pool = append(pool, u)
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].createdSeq < pool[j].createdSeq })

	if len(pool) > qty {
		pool = pool[:qty]
	}
	claimed := make([]shared.ClaimedUnit, len(pool))
	for i, u := range pool {
		r.s.claimSeq++
		u.state = inventory.StateHeld
		u.holdID = holdID
		u.heldSeq = r.s.claimSeq
		claimed[i] = shared.ClaimedUnit{ID: u.id, Seq: u.heldSeq}
	}
	return claimed, nil
}

func (r *unitRepo) ReleaseNewest(_ context.Context, holdID uuid.UUID, n int) ([]uuid.UUID, error) {
	held := r.heldByHold(holdID)
	sort.Slice(held, func(i, j int) bool { return held[i].heldSeq > held[j].heldSeq })
	if len(held) > n {
		held = held[:n]
	}
	ids := make([]uuid.UUID, len(held))
	for i, u := range held {
		u.state = inventory.StateAvailable
		u.holdID = uuid.Nil
		u.heldSeq = 0
		ids[i] = u.id
	}
	return ids, nil
}

func (r *unitRepo) ReleaseByHold(_ context.Context, holdID uuid.UUID) (int, error) {
	held := r.heldByHold(holdID)
	for _, u := range held {
		u.state = inventory.StateAvailable
		u.holdID = uuid.Nil
		u.heldSeq = 0
	}
	return len(held), nil
}

func (r *unitRepo) ReleaseByIDs(_ context.Context, unitIDs []uuid.UUID) ([]shared.ReleasedUnit, error) {
	var released []shared.ReleasedUnit
	for _, id := range unitIDs {
		u, ok := r.s.units[id]
		if !ok || u.state != inventory.StateHeld {
			continue
		}
		if r.s.holdInPendingOrder(u.holdID) {
			continue
		}
		released = append(released, shared.ReleasedUnit{ID: u.id, HoldID: u.holdID})
		u.state = inventory.StateAvailable
		u.holdID = uuid.Nil
		u.heldSeq = 0
	}
	return released, nil
}

func (r *unitRepo) MarkSoldByHold(_ context.Context, holdID uuid.UUID) (int, error) {
	held := r.heldByHold(holdID)
	for _, u := range held {
		u.state = inventory.StateSold
	}
	return len(held), nil
}

func (r *unitRepo) CountByHold(_ context.Context, holdID uuid.UUID) (int, error) {
	return len(r.heldByHold(holdID)), nil
}

func (r *unitRepo) InsertBatch(_ context.Context, productID uuid.UUID, payloads []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(payloads))
	for i, payload := range payloads {
		r.s.createSeq++
		id := uuid.New()
		r.s.units[id] = &unitRow{
			id:         id,
			productID:  productID,
			state:      inventory.StateAvailable,
			payload:    payload,
			createdSeq: r.s.createSeq,
		}
		ids[i] = id
	}
	return ids, nil
}

func (r *unitRepo) heldByHold(holdID uuid.UUID) []*unitRow {
	var held []*unitRow
	for _, u := range r.s.units {
		if u.state == inventory.StateHeld && u.holdID == holdID {
			held = append(held, u)
		}
	}
	return held
}

type holdRepo struct{ s *Store }

func (r *holdRepo) Create(_ context.Context, h *hold.Hold) error {
	r.s.holds[h.ID()] = &holdRow{
		id:        h.ID(),
		cartID:    h.CartID(),
		productID: h.ProductID(),
		status:    h.Status(),
		expiresAt: h.ExpiresAt(),
		createdAt: h.CreatedAt(),
	}
	return nil
}

func (r *holdRepo) FindActiveLine(_ context.Context, cartID, productID uuid.UUID) (*hold.Hold, error) {
	for _, h := range r.s.holds {
		if h.cartID == cartID && h.productID == productID && h.status == hold.StatusActive {
			return reconstruct(h), nil
		}
	}
	return nil, notFound("active hold not found")
}

func (r *holdRepo) FindActiveByCart(_ context.Context, cartID uuid.UUID) ([]*hold.Hold, error) {
	var rows []*holdRow
	for _, h := range r.s.holds {
		if h.cartID == cartID && h.status == hold.StatusActive {
			rows = append(rows, h)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].createdAt.Before(rows[j].createdAt) })

	result := make([]*hold.Hold, len(rows))
	for i, h := range rows {
		result[i] = reconstruct(h)
	}
	return result, nil
}

func (r *holdRepo) InPendingOrder(_ context.Context, holdID uuid.UUID) (bool, error) {
	return r.s.holdInPendingOrder(holdID), nil
}

func (r *holdRepo) UpdateExpiry(_ context.Context, holdID uuid.UUID, expiresAt time.Time) error {
	h, ok := r.s.holds[holdID]
	if !ok || h.status != hold.StatusActive {
		return notFound("active hold not found")
	}
	h.expiresAt = expiresAt
	return nil
}

func (r *holdRepo) MarkCommitted(_ context.Context, holdID uuid.UUID) error {
	h, ok := r.s.holds[holdID]
	if !ok || h.status != hold.StatusActive {
		return notFound("active hold not found")
	}
	h.status = hold.StatusCommitted
	return nil
}

func (r *holdRepo) MarkReleased(_ context.Context, holdID uuid.UUID) error {
	h, ok := r.s.holds[holdID]
	if !ok || h.status != hold.StatusActive {
		return notFound("active hold not found")
	}
	h.status = hold.StatusReleased
	return nil
}

func (r *holdRepo) LockExpired(_ context.Context, now time.Time, limit int) ([]*hold.Hold, error) {
	pending := make(map[uuid.UUID]struct{})
	for _, o := range r.s.orders {
		if o.status != order.StatusPendingPayment {
			continue
		}
		for _, id := range o.holdIDs {
			pending[id] = struct{}{}
		}
	}

	var rows []*holdRow
	for _, h := range r.s.holds {
		if h.status != hold.StatusActive || h.expiresAt.After(now) {
			continue
		}
		if _, ok := pending[h.id]; ok {
			continue
		}
		rows = append(rows, h)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].expiresAt.Before(rows[j].expiresAt) })
	if len(rows) > limit {
		rows = rows[:limit]
	}

	result := make([]*hold.Hold, len(rows))
	for i, h := range rows {
		result[i] = reconstruct(h)
	}
	return result, nil
}

func (r *holdRepo) LockByOrder(_ context.Context, orderID uuid.UUID) ([]*hold.Hold, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, notFound("order not found")
	}
	result := make([]*hold.Hold, 0, len(o.holdIDs))
	for _, id := range o.holdIDs {
		if h, ok := r.s.holds[id]; ok {
			result = append(result, reconstruct(h))
		}
	}
	return result, nil
}

func reconstruct(h *holdRow) *hold.Hold {
	return hold.ReconstructHold(h.id, h.cartID, h.productID, h.status, h.expiresAt, h.createdAt)
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(_ context.Context, o *order.Order) error {
	r.s.orders[o.ID()] = &orderRow{
		id:               o.ID(),
		cartID:           o.CartID(),
		ownerID:          o.OwnerID(),
		holdIDs:          append([]uuid.UUID(nil), o.HoldIDs()...),
		status:           o.Status(),
		reserveExpiresAt: o.ReserveExpiresAt(),
		createdAt:        o.CreatedAt(),
		paidAt:           o.PaidAt(),
	}
	return nil
}

func (r *orderRepo) LockByID(_ context.Context, orderID uuid.UUID) (*order.Order, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, notFound("order not found")
	}
	return order.ReconstructOrder(
		o.id, o.cartID, o.ownerID,
		append([]uuid.UUID(nil), o.holdIDs...),
		o.status, o.reserveExpiresAt, o.createdAt, o.paidAt,
	), nil
}

func (r *orderRepo) UpdateStatus(_ context.Context, orderID uuid.UUID, status order.Status, paidAt *time.Time) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return notFound("order not found")
	}
	o.status = status
	if paidAt != nil {
		o.paidAt = paidAt
	}
	return nil
}

func (r *orderRepo) LockExpiredPending(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, o := range r.s.orders {
		if o.status == order.StatusPendingPayment && !now.Before(o.reserveExpiresAt) {
			ids = append(ids, o.id)
		}
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}
