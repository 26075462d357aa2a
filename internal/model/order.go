package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusExpired OrderStatus = "EXPIRED"
)

// Terminal reports whether no further status transitions are permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusExpired
}

// Order is a purchase of VPC tokens. Amounts are fixed at creation and never
// re-quoted. The deposit slot is handed back to its pool exactly once, at the
// PENDING -> PAID/EXPIRED transition.
type Order struct {
	gorm.Model
	OrderID        string          `gorm:"column:order_id;type:varchar(32);not null;uniqueIndex" json:"order_id"`
	Status         OrderStatus     `gorm:"column:status;type:varchar(16);not null;default:'PENDING'" json:"status"`
	ExpiresAt      time.Time       `gorm:"column:expires_at;not null" json:"expires_at"`
	USDAmount      decimal.Decimal `gorm:"column:usd_amount;type:varchar(64);not null" json:"usd"`
	Method         string          `gorm:"column:method;type:varchar(32);not null" json:"method"`
	PoolKey        string          `gorm:"column:pool_key;type:varchar(16);not null" json:"pool_key"`
	DepositAddress string          `gorm:"column:deposit_address;type:varchar(255);not null" json:"deposit_address"`
	DepositSlot    string          `gorm:"column:deposit_slot;type:varchar(16);not null" json:"deposit_slot"`
	BuyerSolana    string          `gorm:"column:buyer_solana;type:varchar(255);not null" json:"buyer_solana"`
	VPCAmount      decimal.Decimal `gorm:"column:vpc_amount;type:varchar(64);not null" json:"vpc_amount"`
	PayAmount      decimal.Decimal `gorm:"column:pay_amount;type:varchar(64);not null" json:"pay_amount"`
	PaySymbol      string          `gorm:"column:pay_symbol;type:varchar(16);not null" json:"pay_symbol"`
	Promo          string          `gorm:"column:promo;type:varchar(64)" json:"promo,omitempty"`
	Txid           string          `gorm:"column:txid;type:varchar(255)" json:"txid,omitempty"`
	Notes          string          `gorm:"column:notes;type:text" json:"notes,omitempty"`

	// Disbursement bookkeeping. A PAID order with a nil DisbursedAt still owes
	// the buyer tokens and is retried by the reconciler.
	DisbursedAt      *time.Time `gorm:"column:disbursed_at" json:"disbursed_at,omitempty"`
	DisburseAttempts int        `gorm:"column:disburse_attempts;not null;default:0" json:"disburse_attempts"`
}

func (Order) TableName() string {
	return "orders"
}

// Expired reports whether the order's TTL has elapsed at now. An order at
// exactly expires_at is still live.
func (o *Order) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
