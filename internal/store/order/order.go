package order

import (
	"gorm.io/gorm"

	"github.com/voltpass/vpc-backend/internal/model"
)

type Store struct {
}

func New() IStore {
	return &Store{}
}

func (s *Store) Create(tx *gorm.DB, order *model.Order) (*model.Order, error) {
	return order, tx.Create(order).Error
}

func (s *Store) Update(tx *gorm.DB, order *model.Order) error {
	return tx.Save(order).Error
}

func (s *Store) GetByOrderID(tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := tx.Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkExpired transitions the order to EXPIRED only if it is still PENDING.
// It reports whether this caller won the transition; the deposit slot must be
// released only by the winner, since a losing caller cannot know whether the
// slot was already handed to a newer order.
func (s *Store) MarkExpired(tx *gorm.DB, orderID string) (bool, error) {
	res := tx.Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.OrderStatusPending).
		Update("status", model.OrderStatusExpired)
	return res.RowsAffected == 1, res.Error
}

// MarkPaid transitions the order to PAID and records the funding txid, only if
// it is still PENDING. Reports whether this caller won the transition.
func (s *Store) MarkPaid(tx *gorm.DB, orderID, txid string) (bool, error) {
	res := tx.Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status": model.OrderStatusPaid,
			"txid":   txid,
		})
	return res.RowsAffected == 1, res.Error
}

// All returns a point-in-time copy of every order. Callers iterate the copy,
// never a live view.
func (s *Store) All(tx *gorm.DB) ([]model.Order, error) {
	var orders []model.Order
	err := tx.Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) FindByStatus(tx *gorm.DB, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	err := tx.Where("status = ?", status).Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// FindUndisbursed returns PAID orders whose payout has not landed yet and that
// still have retry budget.
func (s *Store) FindUndisbursed(tx *gorm.DB, maxAttempts int) ([]model.Order, error) {
	var orders []model.Order
	err := tx.
		Where("status = ?", model.OrderStatusPaid).
		Where("disbursed_at IS NULL").
		Where("disburse_attempts < ?", maxAttempts).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
