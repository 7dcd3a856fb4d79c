package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/domain"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/remote"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/store"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrEmptyCart       = errors.New("cart is empty")
)

// SyncQueue receives cart snapshots to be pushed to the backend.
type SyncQueue interface {
	Enqueue(userID string, cart *domain.Cart)
}

// CartService owns the line items for the active session. In-memory state
// is the source of truth; every mutation mirrors it to the local store and
// hands a snapshot to the sync queue. Both writes are best-effort and
// never roll a mutation back.
type CartService struct {
	store  store.Store
	remote remote.Backend
	queue  SyncQueue
	sfg    singleflight.Group // dedupes concurrent loads for the same user

	mu   sync.Mutex
	cart *domain.Cart
}

func NewCartService(st store.Store, backend remote.Backend, queue SyncQueue) *CartService {
	now := time.Now()
	return &CartService{
		store:  st,
		remote: backend,
		queue:  queue,
		cart:   &domain.Cart{Items: []domain.LineItem{}, CreatedAt: now, UpdatedAt: now},
	}
}

// AddItem merges into an existing line item when the (product, color,
// size) triple matches, otherwise appends a new one. The product's display
// price is parsed into the snapshot here, once.
func (s *CartService) AddItem(product domain.Product, quantity int, color, size string) (domain.LineItem, error) {
	if quantity <= 0 {
		return domain.LineItem{}, ErrInvalidQuantity
	}

	price, err := domain.ParsePrice(product.SalePrice)
	if err != nil {
		return domain.LineItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for i := range s.cart.Items {
		if s.cart.Items[i].SameVariant(product.ID, color, size) {
			s.cart.Items[i].Quantity += quantity
			s.cart.UpdatedAt = now
			s.persistLocked()
			return s.cart.Items[i], nil
		}
	}

	item := domain.LineItem{
		ID:        domain.NewLineItemID(product.ID, color, size, now),
		ProductID: product.ID,
		Snapshot: domain.ProductSnapshot{
			Title:     product.Title,
			UnitPrice: price,
			Image:     product.Image,
		},
		Quantity:      quantity,
		SelectedColor: color,
		SelectedSize:  size,
		AddedAt:       now,
	}
	s.cart.Items = append(s.cart.Items, item)
	s.cart.UpdatedAt = now
	s.persistLocked()
	return item, nil
}

// RemoveItem drops the line item with the given id. A missing id is a
// no-op, not an error.
func (s *CartService) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart.Items {
		if s.cart.Items[i].ID == id {
			s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
			s.cart.UpdatedAt = time.Now()
			s.persistLocked()
			return
		}
	}
}

// UpdateQuantity sets the line item's quantity; anything below one removes
// the item.
func (s *CartService) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(id)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart.Items {
		if s.cart.Items[i].ID == id {
			s.cart.Items[i].Quantity = quantity
			s.cart.UpdatedAt = time.Now()
			s.persistLocked()
			return
		}
	}
}

// Clear empties the cart, e.g. after checkout.
func (s *CartService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *CartService) clearLocked() {
	s.cart.Items = []domain.LineItem{}
	s.cart.UpdatedAt = time.Now()
	s.persistLocked()
}

// Items returns a copy of the ordered line items.
func (s *CartService) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.LineItem(nil), s.cart.Items...)
}

func (s *CartService) Total() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

func (s *CartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// Load binds the session to userID and hydrates state: remote store first,
// then the local mirror, then an empty cart. Network failure is logged and
// degraded over, never surfaced. This is the only operation that blocks on
// a round trip.
func (s *CartService) Load(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		return s.hydrate(ctx, userID), nil
	})
	if err != nil {
		return nil, err
	}
	loaded := v.(*domain.Cart)

	s.mu.Lock()
	s.cart = loaded.Clone()
	s.cart.UserID = userID
	if s.cart.Items == nil {
		s.cart.Items = []domain.LineItem{}
	}
	s.mirrorLocked()
	snapshot := s.cart.Clone()
	s.mu.Unlock()

	return snapshot, nil
}

func (s *CartService) hydrate(ctx context.Context, userID string) *domain.Cart {
	cart, err := s.remote.Fetch(ctx, userID)
	if err == nil {
		return cart
	}
	if !errors.Is(err, remote.ErrNotFound) {
		log.Printf("remote cart fetch failed, falling back to local: %v", err)
	}

	blob, errGet := s.store.Get(ctx, store.CartKey(userID))
	if errGet == nil {
		var local domain.Cart
		errDecode := json.Unmarshal(blob, &local)
		if errDecode == nil {
			return &local
		}
		log.Printf("local cart blob unreadable, starting empty: %v", errDecode)
	} else if !errors.Is(errGet, store.ErrNotFound) {
		log.Printf("local cart read failed, starting empty: %v", errGet)
	}

	now := time.Now()
	return &domain.Cart{UserID: userID, Items: []domain.LineItem{}, CreatedAt: now, UpdatedAt: now}
}

// Checkout pushes the final snapshot to the backend and clears the cart.
// Unlike the background sync, this push is awaited and its failure is
// returned, so the screen can tell the user the order did not go through.
func (s *CartService) Checkout(ctx context.Context) (*domain.Cart, error) {
	s.mu.Lock()
	if len(s.cart.Items) == 0 {
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}
	snapshot := s.cart.Clone()
	s.mu.Unlock()

	if snapshot.UserID != "" {
		if err := s.remote.Push(ctx, snapshot.UserID, snapshot); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
	return snapshot, nil
}

func (s *CartService) persistLocked() {
	s.mirrorLocked()
	if s.cart.UserID != "" && s.queue != nil {
		s.queue.Enqueue(s.cart.UserID, s.cart.Clone())
	}
}

// mirrorLocked writes the blob to the local store without queueing a
// remote push; used by Load so a fresh hydrate does not echo back.
func (s *CartService) mirrorLocked() {
	blob, err := json.Marshal(s.cart)
	if err != nil {
		log.Printf("marshal cart failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.store.Set(ctx, store.CartKey(s.cart.UserID), blob); err != nil {
		log.Printf("local cart persist failed: %v", err)
	}
}
