package order

import (
	"gorm.io/gorm"

	"github.com/voltpass/vpc-backend/internal/model"
)

type IStore interface {
	Create(tx *gorm.DB, order *model.Order) (*model.Order, error)
	Update(tx *gorm.DB, order *model.Order) error
	GetByOrderID(tx *gorm.DB, orderID string) (*model.Order, error)
	MarkExpired(tx *gorm.DB, orderID string) (bool, error)
	MarkPaid(tx *gorm.DB, orderID, txid string) (bool, error)
	All(tx *gorm.DB) ([]model.Order, error)
	FindByStatus(tx *gorm.DB, status model.OrderStatus) ([]model.Order, error)
	FindUndisbursed(tx *gorm.DB, maxAttempts int) ([]model.Order, error)
}
