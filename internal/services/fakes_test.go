package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/realvia/estate-service/internal/billing"
	"github.com/realvia/estate-service/internal/models"
	internal_utils "github.com/realvia/estate-service/internal/utils"
)

/*
   In-memory doubles for the repository layer. They reproduce the two
   behaviors the services depend on: the aggregate row_version guard
   (stale expected version fails the write) and the property/offers
   consistency boundary (offer atomics bump the property version).
*/

type fakeStore struct {
	mu     sync.Mutex
	props  map[uuid.UUID]*models.Property
	offers map[uuid.UUID]*models.PropertyOffer
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		props:  make(map[uuid.UUID]*models.Property),
		offers: make(map[uuid.UUID]*models.PropertyOffer),
	}
}

func copyProperty(p *models.Property) *models.Property {
	cp := *p
	cp.TagIDs = append([]uuid.UUID(nil), p.TagIDs...)
	return &cp
}

func copyOffer(o *models.PropertyOffer) *models.PropertyOffer {
	cp := *o
	return &cp
}

/* ---------------------------- properties ---------------------------- */

type fakePropertyRepo struct {
	store *fakeStore
}

func (r *fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := copyProperty(p)
	cp.RowVersion = 1
	cp.CreatedAt = time.Now()
	r.store.props[cp.ID] = cp
	return nil
}

func (r *fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.props[id]
	if !ok {
		return nil, nil
	}
	return copyProperty(p), nil
}

func (r *fakePropertyRepo) ListActive(_ context.Context) ([]*models.Property, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Property
	for _, p := range r.store.props {
		if p.Active {
			out = append(out, copyProperty(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakePropertyRepo) ListBySalespersonID(_ context.Context, salespersonID uuid.UUID) ([]*models.Property, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Property
	for _, p := range r.store.props {
		if p.Active && p.SalespersonID == salespersonID {
			out = append(out, copyProperty(p))
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) Update(_ context.Context, p *models.Property) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cur, ok := r.store.props[p.ID]
	if !ok {
		return internal_utils.ErrNotFound
	}
	cp := copyProperty(p)
	cp.RowVersion = cur.RowVersion + 1
	r.store.props[p.ID] = cp
	p.RowVersion = cp.RowVersion
	return nil
}

func (r *fakePropertyRepo) UpdateIfVersion(_ context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cur, ok := r.store.props[p.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := copyProperty(p)
	cp.RowVersion = expected + 1
	cp.CreatedAt = cur.CreatedAt
	r.store.props[p.ID] = cp
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakePropertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	for attempt := 0; attempt < 3; attempt++ {
		p, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return internal_utils.ErrNotFound
		}
		expected := p.RowVersion
		if err := mutate(p); err != nil {
			return err
		}
		tag, err := r.UpdateIfVersion(ctx, p, expected)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
	}
	return internal_utils.ErrRowVersionConflict
}

func (r *fakePropertyRepo) UpdateStateAtomic(
	_ context.Context,
	id uuid.UUID,
	newState models.PropertyStateType,
	expectedVersion int64,
) (*models.Property, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cur, ok := r.store.props[id]
	if !ok {
		return nil, nil
	}
	if cur.RowVersion != expectedVersion {
		return nil, internal_utils.ErrRowVersionConflict
	}
	cur.State = newState
	cur.RowVersion++
	return copyProperty(cur), nil
}

func (r *fakePropertyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.props[id]; !ok {
		return internal_utils.ErrNotFound
	}
	delete(r.store.props, id)
	for oid, o := range r.store.offers {
		if o.PropertyID == id {
			delete(r.store.offers, oid)
		}
	}
	return nil
}

func (r *fakePropertyRepo) Archive(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cur, ok := r.store.props[id]
	if !ok {
		return internal_utils.ErrNotFound
	}
	cur.Active = false
	cur.RowVersion++
	return nil
}

/* ------------------------------ offers ------------------------------ */

type fakeOfferRepo struct {
	store *fakeStore
}

func (r *fakeOfferRepo) GetByID(_ context.Context, id uuid.UUID) (*models.PropertyOffer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.offers[id]
	if !ok {
		return nil, nil
	}
	return copyOffer(o), nil
}

func (r *fakeOfferRepo) ListByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*models.PropertyOffer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.PropertyOffer
	for _, o := range r.store.offers {
		if o.PropertyID == propertyID {
			out = append(out, copyOffer(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	return out, nil
}

func (r *fakeOfferRepo) CreateAtomic(
	_ context.Context,
	o *models.PropertyOffer,
	newState models.PropertyStateType,
	expectedPropertyVersion int64,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	prop, ok := r.store.props[o.PropertyID]
	if !ok {
		return internal_utils.ErrNotFound
	}
	if prop.RowVersion != expectedPropertyVersion {
		return internal_utils.ErrRowVersionConflict
	}
	cp := copyOffer(o)
	cp.RowVersion = 1
	r.store.offers[cp.ID] = cp
	prop.State = newState
	prop.RowVersion++
	return nil
}

func (r *fakeOfferRepo) AcceptAtomic(
	_ context.Context,
	offerID, propertyID, buyerID uuid.UUID,
	price float64,
	expectedPropertyVersion int64,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	prop, ok := r.store.props[propertyID]
	if !ok {
		return internal_utils.ErrNotFound
	}
	if prop.RowVersion != expectedPropertyVersion {
		return internal_utils.ErrRowVersionConflict
	}
	offer, ok := r.store.offers[offerID]
	if !ok {
		return internal_utils.ErrNotFound
	}
	offer.Status = models.OfferStatusAccepted
	offer.RowVersion++
	buyer := buyerID
	prop.BuyerID = &buyer
	prop.SellingPrice = price
	prop.State = models.PropertyStateOfferAccepted
	prop.RowVersion++
	return nil
}

func (r *fakeOfferRepo) RefuseAtomic(
	_ context.Context,
	offerID, propertyID uuid.UUID,
	revert bool,
	expectedPropertyVersion int64,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	prop, ok := r.store.props[propertyID]
	if !ok {
		return internal_utils.ErrNotFound
	}
	if prop.RowVersion != expectedPropertyVersion {
		return internal_utils.ErrRowVersionConflict
	}
	offer, ok := r.store.offers[offerID]
	if !ok {
		return internal_utils.ErrNotFound
	}
	offer.Status = models.OfferStatusRefused
	offer.RowVersion++
	if revert {
		prop.BuyerID = nil
		prop.SellingPrice = 0
		prop.State = models.PropertyStateOfferReceived
	}
	prop.RowVersion++
	return nil
}

func (r *fakeOfferRepo) UpdateValidityIfVersion(_ context.Context, o *models.PropertyOffer, expected int64) (pgconn.CommandTag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cur, ok := r.store.offers[o.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cur.ValidityDays = o.ValidityDays
	cur.RowVersion = expected + 1
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeOfferRepo) RefreshTypeMirror(_ context.Context, propertyID uuid.UUID, typeID *uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.offers {
		if o.PropertyID == propertyID {
			o.PropertyTypeID = typeID
		}
	}
	return nil
}

func (r *fakeOfferRepo) ListExpiredPending(_ context.Context, asOf time.Time) ([]*models.PropertyOffer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.PropertyOffer
	for _, o := range r.store.offers {
		deadline := o.CreatedAt.AddDate(0, 0, o.ValidityDays)
		if o.Status == models.OfferStatusNone && deadline.Before(asOf) {
			out = append(out, copyOffer(o))
		}
	}
	return out, nil
}

/* --------------------------- lookup tables --------------------------- */

type fakeTypeRepo struct {
	mu    sync.Mutex
	types map[uuid.UUID]*models.PropertyType
}

func newFakeTypeRepo() *fakeTypeRepo {
	return &fakeTypeRepo{types: make(map[uuid.UUID]*models.PropertyType)}
}

func (r *fakeTypeRepo) Create(_ context.Context, t *models.PropertyType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.types {
		if existing.Name == t.Name {
			return internal_utils.ErrDuplicateName
		}
	}
	cp := *t
	r.types[t.ID] = &cp
	return nil
}

func (r *fakeTypeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.PropertyType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTypeRepo) List(_ context.Context) ([]*models.PropertyType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PropertyType
	for _, t := range r.types {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *fakeTypeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[id]; !ok {
		return internal_utils.ErrNotFound
	}
	delete(r.types, id)
	return nil
}

type fakeTagRepo struct {
	mu   sync.Mutex
	tags map[uuid.UUID]*models.PropertyTag
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[uuid.UUID]*models.PropertyTag)}
}

func (r *fakeTagRepo) Create(_ context.Context, t *models.PropertyTag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tags {
		if existing.Name == t.Name {
			return internal_utils.ErrDuplicateName
		}
	}
	cp := *t
	r.tags[t.ID] = &cp
	return nil
}

func (r *fakeTagRepo) GetByID(_ context.Context, id uuid.UUID) (*models.PropertyTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tags[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTagRepo) List(_ context.Context) ([]*models.PropertyTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PropertyTag
	for _, t := range r.tags {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTagRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[id]; !ok {
		return internal_utils.ErrNotFound
	}
	delete(r.tags, id)
	return nil
}

/* ----------------------------- invoicer ----------------------------- */

type fakeInvoicer struct {
	mu       sync.Mutex
	invoices []capturedInvoice
	failWith error
}

type capturedInvoice struct {
	BuyerID uuid.UUID
	Lines   []billing.InvoiceLine
}

func (f *fakeInvoicer) CreateInvoice(_ context.Context, buyerID uuid.UUID, lines []billing.InvoiceLine) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return uuid.Nil, f.failWith
	}
	f.invoices = append(f.invoices, capturedInvoice{BuyerID: buyerID, Lines: lines})
	return uuid.New(), nil
}

/* ------------------------------- clock ------------------------------- */

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func (c fixedClock) Today() time.Time {
	return time.Date(c.now.Year(), c.now.Month(), c.now.Day(), 0, 0, 0, 0, time.UTC)
}

/* ------------------------------ harness ------------------------------ */

type testEnv struct {
	store     *fakeStore
	propRepo  *fakePropertyRepo
	offerRepo *fakeOfferRepo
	typeRepo  *fakeTypeRepo
	tagRepo   *fakeTagRepo
	invoicer  *fakeInvoicer
	clock     fixedClock

	propertySvc *PropertyService
	offerSvc    *OfferService
	catalogSvc  *CatalogService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	env := &testEnv{
		store:     store,
		propRepo:  &fakePropertyRepo{store: store},
		offerRepo: &fakeOfferRepo{store: store},
		typeRepo:  newFakeTypeRepo(),
		tagRepo:   newFakeTagRepo(),
		invoicer:  &fakeInvoicer{},
		clock:     fixedClock{now: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)},
	}
	env.propertySvc = NewPropertyService(env.propRepo, env.offerRepo, env.typeRepo, env.tagRepo, env.invoicer, env.clock)
	env.offerSvc = NewOfferService(env.propRepo, env.offerRepo, env.clock)
	env.catalogSvc = NewCatalogService(env.typeRepo, env.tagRepo)
	return env
}

// seedProperty inserts a listing directly through the repo, bypassing
// request validation.
func (e *testEnv) seedProperty(p *models.Property) *models.Property {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.SalespersonID == uuid.Nil {
		p.SalespersonID = uuid.New()
	}
	p.Active = true
	_ = e.propRepo.Create(context.Background(), p)
	stored, _ := e.propRepo.GetByID(context.Background(), p.ID)
	return stored
}
