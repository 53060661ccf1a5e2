package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/fsdevblog/groph-commerce/internal/repository/repoargs"
	"github.com/fsdevblog/groph-commerce/pkg/uow"
)

// memStore потокобезопасное in-memory хранилище для конкурентных тестов.
// Воспроизводит транзакционную семантику postgres в нужном тестам объеме:
// блокировки строк в духе SELECT FOR UPDATE удерживаются до конца
// транзакции, откат отменяет все мутации транзакции в обратном порядке.
type memStore struct {
	mu       sync.Mutex
	rowLocks map[string]*sync.Mutex

	users    map[int64]domain.User
	products map[int64]domain.Product
	orders   map[int64]domain.Order
	history  []domain.PointHistory

	nextUserID    int64
	nextProductID int64
	nextOrderID   int64
	nextItemID    int64
	nextHistoryID int64
}

func newMemStore() *memStore {
	return &memStore{
		rowLocks: make(map[string]*sync.Mutex),
		users:    make(map[int64]domain.User),
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]domain.Order),
	}
}

func (s *memStore) rowLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.rowLocks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.rowLocks[key] = l
	return l
}

// memTX транзакция над memStore. Хранит захваченные блокировки строк и
// undo-лог: при откате мутации отменяются в обратном порядке, блокировки
// в любом случае освобождаются в конце транзакции.
type memTX struct {
	store *memStore
	held  map[string]*sync.Mutex
	undo  []func()
}

var _ uow.TX = (*memTX)(nil)

func newMemTX(store *memStore) *memTX {
	return &memTX{store: store, held: make(map[string]*sync.Mutex)}
}

func (t *memTX) Get(name uow.RepositoryName) (uow.Repository, error) {
	return memRepoFor(t.store, t, name)
}

// lock захватывает блокировку строки key. Повторный захват той же строки
// внутри одной транзакции проходит без ожидания, как в postgres.
func (t *memTX) lock(key string) {
	if _, ok := t.held[key]; ok {
		return
	}
	l := t.store.rowLock(key)
	l.Lock()
	t.held[key] = l
}

func (t *memTX) addUndo(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *memTX) rollback() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTX) releaseLocks() {
	for key, l := range t.held {
		l.Unlock()
		delete(t.held, key)
	}
}

// memUOW реализация uow.UOW поверх memStore.
type memUOW struct {
	store *memStore
}

var _ uow.UOW = (*memUOW)(nil)

func newMemUOW(store *memStore) *memUOW {
	return &memUOW{store: store}
}

func (u *memUOW) Register(_ uow.RepositoryName, _ uow.RepositoryFactory) error {
	return nil
}

func (u *memUOW) Do(ctx context.Context, fn func(ctx context.Context, tx uow.TX) error) error {
	tx := newMemTX(u.store)
	defer tx.releaseLocks()

	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (u *memUOW) GetRepository(name uow.RepositoryName) (uow.Repository, error) {
	// Вне транзакции репозиторий работает без блокировок и undo-лога.
	return memRepoFor(u.store, nil, name)
}

func memRepoFor(store *memStore, tx *memTX, name uow.RepositoryName) (uow.Repository, error) {
	switch name {
	case uow.RepositoryName(repoargs.UserRepoName):
		return &memUserRepo{store: store, tx: tx}, nil
	case uow.RepositoryName(repoargs.ProductRepoName):
		return &memProductRepo{store: store, tx: tx}, nil
	case uow.RepositoryName(repoargs.OrderRepoName):
		return &memOrderRepo{store: store, tx: tx}, nil
	case uow.RepositoryName(repoargs.PointHistoryRepoName):
		return &memHistoryRepo{store: store, tx: tx}, nil
	default:
		return nil, fmt.Errorf("unknown repository %q", name)
	}
}

type memUserRepo struct {
	store *memStore
	tx    *memTX
}

var _ UserRepository = (*memUserRepo)(nil)

func (r *memUserRepo) CreateUser(_ context.Context, args repoargs.CreateUser) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextUserID++
	user := domain.User{ID: r.store.nextUserID, Name: args.Name, Point: args.Point}
	r.store.users[user.ID] = user

	if r.tx != nil {
		id := user.ID
		r.tx.addUndo(func() { delete(r.store.users, id) })
	}
	return &user, nil
}

func (r *memUserRepo) Find(_ context.Context, id int64) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &user, nil
}

func (r *memUserRepo) FindForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	if r.tx != nil {
		r.tx.lock(fmt.Sprintf("user:%d", id))
	}
	return r.Find(ctx, id)
}

func (r *memUserRepo) UpdatePoint(_ context.Context, id int64, point int64) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	prev := user.Point
	user.Point = point
	r.store.users[id] = user

	if r.tx != nil {
		r.tx.addUndo(func() {
			u := r.store.users[id]
			u.Point = prev
			r.store.users[id] = u
		})
	}
	return &user, nil
}

type memProductRepo struct {
	store *memStore
	tx    *memTX
}

var _ ProductRepository = (*memProductRepo)(nil)

func (r *memProductRepo) CreateProduct(_ context.Context, args repoargs.CreateProduct) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextProductID++
	product := domain.Product{ID: r.store.nextProductID, Name: args.Name, Price: args.Price, Stock: args.Stock}
	r.store.products[product.ID] = product

	if r.tx != nil {
		id := product.ID
		r.tx.addUndo(func() { delete(r.store.products, id) })
	}
	return &product, nil
}

func (r *memProductRepo) Find(_ context.Context, id int64) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &product, nil
}

func (r *memProductRepo) FindForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	if r.tx != nil {
		r.tx.lock(fmt.Sprintf("product:%d", id))
	}
	return r.Find(ctx, id)
}

func (r *memProductRepo) GetAll(_ context.Context) ([]domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	products := make([]domain.Product, 0, len(r.store.products))
	for _, product := range r.store.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *memProductRepo) UpdateStock(_ context.Context, id int64, stock int64) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	prev := product.Stock
	product.Stock = stock
	r.store.products[id] = product

	if r.tx != nil {
		r.tx.addUndo(func() {
			p := r.store.products[id]
			p.Stock = prev
			r.store.products[id] = p
		})
	}
	return &product, nil
}

func (r *memProductRepo) IncreaseStock(_ context.Context, id int64, quantity int64) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	product.Stock += quantity
	r.store.products[id] = product

	if r.tx != nil {
		// Аддитивная операция, аддитивный же откат.
		r.tx.addUndo(func() {
			p := r.store.products[id]
			p.Stock -= quantity
			r.store.products[id] = p
		})
	}
	return &product, nil
}

func (r *memProductRepo) UpdatePrice(_ context.Context, id int64, price int64) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	prev := product.Price
	product.Price = price
	r.store.products[id] = product

	if r.tx != nil {
		r.tx.addUndo(func() {
			p := r.store.products[id]
			p.Price = prev
			r.store.products[id] = p
		})
	}
	return &product, nil
}

type memOrderRepo struct {
	store *memStore
	tx    *memTX
}

var _ OrderRepository = (*memOrderRepo)(nil)

func (r *memOrderRepo) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextOrderID++
	order.ID = r.store.nextOrderID
	for i := range order.Items {
		r.store.nextItemID++
		order.Items[i].ID = r.store.nextItemID
		order.Items[i].OrderID = order.ID
	}
	r.store.orders[order.ID] = order

	if r.tx != nil {
		id := order.ID
		r.tx.addUndo(func() { delete(r.store.orders, id) })
	}
	return &order, nil
}

func (r *memOrderRepo) Find(_ context.Context, id int64) (*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &order, nil
}

func (r *memOrderRepo) FindForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	if r.tx != nil {
		r.tx.lock(fmt.Sprintf("order:%d", id))
	}
	return r.Find(ctx, id)
}

func (r *memOrderRepo) GetByUserID(_ context.Context, userID int64) ([]domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	orders := make([]domain.Order, 0)
	for _, order := range r.store.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (r *memOrderRepo) UpdateStatus(
	_ context.Context,
	id int64,
	status domain.OrderStatusType,
) (*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	prev := order.Status
	order.Status = status
	r.store.orders[id] = order

	if r.tx != nil {
		r.tx.addUndo(func() {
			o := r.store.orders[id]
			o.Status = prev
			r.store.orders[id] = o
		})
	}
	return &order, nil
}

type memHistoryRepo struct {
	store *memStore
	tx    *memTX
}

var _ PointHistoryRepository = (*memHistoryRepo)(nil)

func (r *memHistoryRepo) Create(_ context.Context, args repoargs.CreatePointHistory) (*domain.PointHistory, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextHistoryID++
	record := domain.PointHistory{
		ID:           r.store.nextHistoryID,
		UserID:       args.UserID,
		Type:         args.Type,
		Amount:       args.Amount,
		BalanceAfter: args.BalanceAfter,
	}
	r.store.history = append(r.store.history, record)

	if r.tx != nil {
		id := record.ID
		r.tx.addUndo(func() {
			for i, h := range r.store.history {
				if h.ID == id {
					r.store.history = append(r.store.history[:i], r.store.history[i+1:]...)
					break
				}
			}
		})
	}
	return &record, nil
}

func (r *memHistoryRepo) GetByUserID(_ context.Context, userID int64) ([]domain.PointHistory, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	history := make([]domain.PointHistory, 0)
	for _, record := range r.store.history {
		if record.UserID == userID {
			history = append(history, record)
		}
	}
	return history, nil
}
