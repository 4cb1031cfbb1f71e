package cart

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// クライアント側カートの明示的な状態コンテナ。
// サーバー側の価格・在庫検証とは完全に分離されていて、ここで持つ価格は
// 表示用スナップショットでしかない（チェックアウトでは送られない）。

var ErrItemNotFound = errors.New("cart item not found")

type Item struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
}

// 永続化されるカートの形
type Snapshot struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// key-value snapshot永続化の約束
type Storage interface {
	Save(ctx context.Context, key string, snap Snapshot) error
	Load(ctx context.Context, key string) (Snapshot, bool, error)
	Delete(ctx context.Context, key string) error
}

type Store struct {
	mu      sync.Mutex
	key     string
	items   map[int64]Item
	storage Storage
}

func NewStore(key string, storage Storage) *Store {
	return &Store{
		key:     key,
		items:   make(map[int64]Item),
		storage: storage,
	}
}

// 保存済みスナップショットから復元する。無ければ空のまま。
func (s *Store) Load(ctx context.Context) error {
	snap, found, err := s.storage.Load(ctx, s.key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[int64]Item)
	if found {
		for _, it := range snap.Items {
			s.items[it.ProductID] = it
		}
	}
	return nil
}

// 追加。既にある商品なら数量を足す。
func (s *Store) Add(ctx context.Context, item Item) error {
	if item.ProductID <= 0 || item.Quantity < 1 {
		return errors.New("invalid cart item")
	}

	s.mu.Lock()
	if existing, ok := s.items[item.ProductID]; ok {
		existing.Quantity += item.Quantity
		s.items[item.ProductID] = existing
	} else {
		s.items[item.ProductID] = item
	}
	s.mu.Unlock()

	return s.persist(ctx)
}

func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int64) error {
	if quantity < 1 {
		return errors.New("invalid quantity")
	}

	s.mu.Lock()
	it, ok := s.items[productID]
	if !ok {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	it.Quantity = quantity
	s.items[productID] = it
	s.mu.Unlock()

	return s.persist(ctx)
}

func (s *Store) Remove(ctx context.Context, productID int64) error {
	s.mu.Lock()
	if _, ok := s.items[productID]; !ok {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	delete(s.items, productID)
	s.mu.Unlock()

	return s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = make(map[int64]Item)
	s.mu.Unlock()

	return s.storage.Delete(ctx, s.key)
}

// product id順の安定した並びで返す
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// 表示用合計（サーバーはこの値を信用しない）
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, it := range s.items {
		total += it.UnitPrice * it.Quantity
	}
	return total
}

func (s *Store) persist(ctx context.Context) error {
	return s.storage.Save(ctx, s.key, Snapshot{
		Items:     s.Items(),
		UpdatedAt: time.Now(),
	})
}
