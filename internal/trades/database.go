package trades

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateTrade(trade *types.Trade) error {
	return d.db.Create(trade).Error
}

func (d *Database) GetTrade(tradeID string) (*types.Trade, error) {
	var trade types.Trade
	if err := d.db.Where("trade_id = ?", tradeID).First(&trade).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trade, nil
}

func (d *Database) GetClientTrades(clientID string) ([]types.Trade, error) {
	var trades []types.Trade
	if err := d.db.Where("client_id = ?", clientID).
		Order("executed_at DESC").
		Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

func (d *Database) GetOrderTrades(orderID string) ([]types.Trade, error) {
	var trades []types.Trade
	if err := d.db.Where("order_id = ?", orderID).Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}
