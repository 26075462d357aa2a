package store

import (
	"github.com/voltpass/vpc-backend/internal/store/order"
)

type Store struct {
	Order order.IStore
}

func New() *Store {
	return &Store{
		Order: order.New(),
	}
}
