package portfolio

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

func (d *Database) GetHolding(clientID, symbol string) (*types.Holding, error) {
	var holding types.Holding
	if err := d.db.Where("client_id = ? AND symbol = ?", clientID, symbol).
		First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &holding, nil
}

func (d *Database) SaveHolding(holding *types.Holding) error {
	return d.db.Save(holding).Error
}

func (d *Database) GetClientHoldings(clientID string) ([]types.Holding, error) {
	var holdings []types.Holding
	if err := d.db.Where("client_id = ? AND quantity > 0", clientID).
		Order("symbol ASC").
		Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}
