//go:build unit || e2e

package fake

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain/affiliate"
	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type Job struct {
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

// UoW is an in-memory shared.UnitOfWork. Writes made inside Within are
// staged and only become visible when fn returns nil.
type UoW struct {
	mu    sync.Mutex
	reads *Reads

	Orders    []*order.Order
	Invoices  []*order.Invoice
	Referrals []*affiliate.Referral
	Jobs      []Job
	Usage     map[uuid.UUID]int
	Stock     map[uuid.UUID]int
	Logins    map[uuid.UUID]time.Time

	// FailOn makes the named write fail, e.g. "orders.create".
	FailOn map[string]error
	// Now decides idempotency key expiry.
	Now func() time.Time
}

func NewUoW(reads *Reads) *UoW {
	return &UoW{
		reads:  reads,
		Usage:  map[uuid.UUID]int{},
		Stock:  map[uuid.UUID]int{},
		Logins: map[uuid.UUID]time.Time{},
		FailOn: map[string]error{},
		Now:    time.Now,
	}
}

func (u *UoW) CommandReads() shared.CommandReads { return u.reads }

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	tx := &fakeTx{uow: u, keys: map[pair]*shared.IdempotencyRecord{}, dropped: map[pair]bool{}, usage: map[uuid.UUID]int{}, stock: map[uuid.UUID]int{}, logins: map[uuid.UUID]time.Time{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	u.commit(tx)
	return nil
}

func (u *UoW) commit(tx *fakeTx) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Orders = append(u.Orders, tx.orders...)
	u.Invoices = append(u.Invoices, tx.invoices...)
	u.Referrals = append(u.Referrals, tx.referrals...)
	u.Jobs = append(u.Jobs, tx.jobs...)
	for id, n := range tx.usage {
		u.Usage[id] += n
		u.reads.mu.Lock()
		for _, c := range u.reads.Coupons {
			if c.ID == id {
				c.UsedQty += n
			}
		}
		u.reads.mu.Unlock()
	}
	for id, at := range tx.logins {
		u.Logins[id] = at
	}
	for id, n := range tx.stock {
		u.Stock[id] += n
		u.reads.mu.Lock()
		if p, ok := u.reads.Packages[id]; ok && p.Qty != nil {
			left := *p.Qty - n
			p.Qty = &left
		}
		u.reads.mu.Unlock()
	}
	for _, o := range tx.orders {
		u.reads.mu.Lock()
		u.reads.OrderCounts[o.ClientID()]++
		for _, l := range o.Lines() {
			u.reads.Services[pair{o.ClientID(), l.PackageID}] += l.Qty
		}
		u.reads.mu.Unlock()
	}

	u.reads.mu.Lock()
	defer u.reads.mu.Unlock()
	for k := range tx.dropped {
		delete(u.reads.Keys, k)
	}
	for k, rec := range tx.keys {
		u.reads.Keys[k] = rec
	}
}

func (u *UoW) fail(op string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.FailOn[op]
}

// OrderByID returns a committed order.
func (u *UoW) OrderByID(id uuid.UUID) *order.Order {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, o := range u.Orders {
		if o.ID() == id {
			return o
		}
	}
	return nil
}

type fakeTx struct {
	uow *UoW

	orders    []*order.Order
	invoices  []*order.Invoice
	referrals []*affiliate.Referral
	jobs      []Job
	usage     map[uuid.UUID]int
	stock     map[uuid.UUID]int
	logins    map[uuid.UUID]time.Time
	keys      map[pair]*shared.IdempotencyRecord
	dropped   map[pair]bool
}

func (t *fakeTx) Orders() shared.OrderRepository               { return txOrders{t} }
func (t *fakeTx) Coupons() shared.CouponRepository             { return txCoupons{t} }
func (t *fakeTx) Packages() shared.PackageRepository           { return txPackages{t} }
func (t *fakeTx) Referrals() shared.ReferralRepository         { return txReferrals{t} }
func (t *fakeTx) Idempotency() shared.IdempotencyRepository    { return txIdempotency{t} }
func (t *fakeTx) Notifications() shared.NotificationRepository { return txNotifications{t} }
func (t *fakeTx) Clients() shared.ClientRepository             { return txClients{t} }
func (t *fakeTx) Reads() shared.CommandReads                   { return t.uow.reads }
func (t *fakeTx) DB() db.DBTX                                  { return nil }

type txOrders struct{ t *fakeTx }

func (r txOrders) Create(_ context.Context, _ db.DBTX, o *order.Order) error {
	if err := r.t.uow.fail("orders.create"); err != nil {
		return err
	}
	r.t.orders = append(r.t.orders, o)
	return nil
}

func (r txOrders) CreateInvoice(_ context.Context, _ db.DBTX, inv *order.Invoice) error {
	if err := r.t.uow.fail("orders.invoice"); err != nil {
		return err
	}
	r.t.invoices = append(r.t.invoices, inv)
	return nil
}

type txCoupons struct{ t *fakeTx }

func (r txCoupons) IncrementUsage(_ context.Context, _ db.DBTX, couponID uuid.UUID) error {
	if err := r.t.uow.fail("coupons.increment"); err != nil {
		return err
	}
	r.t.uow.reads.mu.Lock()
	defer r.t.uow.reads.mu.Unlock()
	for _, c := range r.t.uow.reads.Coupons {
		if c.ID == couponID && c.MaxQty > 0 && c.UsedQty+r.t.usage[couponID] >= c.MaxQty {
			return infra.RepositoryError{Kind: infra.KindConflict}
		}
	}
	r.t.usage[couponID]++
	return nil
}

type txPackages struct{ t *fakeTx }

func (r txPackages) DecrementStock(_ context.Context, _ db.DBTX, packageID uuid.UUID, qty int) error {
	if err := r.t.uow.fail("packages.stock"); err != nil {
		return err
	}
	r.t.uow.reads.mu.Lock()
	defer r.t.uow.reads.mu.Unlock()
	if p, ok := r.t.uow.reads.Packages[packageID]; ok && p.Qty != nil && *p.Qty-r.t.stock[packageID] < qty {
		return infra.RepositoryError{Kind: infra.KindConflict}
	}
	r.t.stock[packageID] += qty
	return nil
}

type txReferrals struct{ t *fakeTx }

func (r txReferrals) Create(_ context.Context, _ db.DBTX, ref *affiliate.Referral) error {
	if err := r.t.uow.fail("referrals.create"); err != nil {
		return err
	}
	r.t.referrals = append(r.t.referrals, ref)
	return nil
}

type txNotifications struct{ t *fakeTx }

func (r txNotifications) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	if err := r.t.uow.fail("notifications.create"); err != nil {
		return err
	}
	r.t.jobs = append(r.t.jobs, Job{Kind: kind, Topic: topic, Payload: payload, RunAt: runAt})
	return nil
}

type txClients struct{ t *fakeTx }

func (r txClients) UpdateLastLogin(_ context.Context, _ db.DBTX, clientID uuid.UUID, at time.Time) error {
	if err := r.t.uow.fail("clients.last_login"); err != nil {
		return err
	}
	r.t.logins[clientID] = at
	return nil
}

type txIdempotency struct{ t *fakeTx }

func (r txIdempotency) TryInsert(_ context.Context, _ db.DBTX, key, clientID uuid.UUID, _ string, requestHash string, expiresAt time.Time) (bool, error) {
	if err := r.t.uow.fail("idempotency.insert"); err != nil {
		return false, err
	}
	k := pair{key, clientID}
	r.t.uow.reads.mu.Lock()
	existing, ok := r.t.uow.reads.Keys[k]
	r.t.uow.reads.mu.Unlock()
	if ok && existing.ExpiresAt.After(r.t.uow.Now()) {
		return false, nil
	}
	r.t.keys[k] = &shared.IdempotencyRecord{
		Key:         key,
		ClientID:    clientID,
		Status:      shared.IdempotencyProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r txIdempotency) UpdateStatusCompleted(_ context.Context, _ db.DBTX, key, clientID uuid.UUID, _ string, orderID uuid.UUID) error {
	if err := r.t.uow.fail("idempotency.complete"); err != nil {
		return err
	}
	k := pair{key, clientID}
	r.t.uow.reads.mu.Lock()
	existing, ok := r.t.uow.reads.Keys[k]
	r.t.uow.reads.mu.Unlock()
	if !ok {
		return infra.RepositoryError{Kind: infra.KindNotFound}
	}
	rec := *existing
	rec.Status = shared.IdempotencyCompleted
	rec.ResultOrderID = &orderID
	r.t.keys[k] = &rec
	return nil
}

func (r txIdempotency) Release(_ context.Context, _ db.DBTX, key, clientID uuid.UUID) error {
	k := pair{key, clientID}
	r.t.uow.reads.mu.Lock()
	existing, ok := r.t.uow.reads.Keys[k]
	r.t.uow.reads.mu.Unlock()
	if ok && existing.Status == shared.IdempotencyProcessing {
		r.t.dropped[k] = true
	}
	return nil
}

var _ shared.UnitOfWork = (*UoW)(nil)
