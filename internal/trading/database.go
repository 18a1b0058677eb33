package trading

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) GetOrder(orderID string) (*types.Order, error) {
	var order types.Order
	if err := d.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (d *Database) GetClientOrders(clientID string) ([]types.Order, error) {
	var orders []types.Order
	if err := d.db.Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *Database) GetPlacedOrders() ([]types.Order, error) {
	var orders []types.Order
	if err := d.db.Where("status = ?", types.OrderStatusPlaced).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *Database) CreateOrder(order *types.Order) error {
	return d.db.Create(order).Error
}

func (d *Database) UpdateOrder(order *types.Order) error {
	return d.db.Save(order).Error
}

// CreateOrderWithIdempotency creates a new order and idempotency record in a transaction
func (d *Database) CreateOrderWithIdempotency(order *types.Order, idempotencyKey string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		record := IdempotencyRecord{
			IdempotencyKey: idempotencyKey,
			ResourceID:     order.OrderID,
			ResourceType:   "order",
			ExpiresAt:      time.Now().Add(24 * time.Hour),
		}

		return tx.Create(&record).Error
	})
}

// GetIdempotencyRecord retrieves an idempotency record by key
func (d *Database) GetIdempotencyRecord(key string) (*IdempotencyRecord, error) {
	var record IdempotencyRecord
	if err := d.db.Where("idempotency_key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Transaction runs fn inside a database transaction.
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.db.Transaction(fn)
}
