package instruments

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

func (d *Database) ListInstruments() ([]types.Instrument, error) {
	var instruments []types.Instrument
	if err := d.db.Order("symbol ASC").Find(&instruments).Error; err != nil {
		return nil, err
	}
	return instruments, nil
}

func (d *Database) GetBySymbol(symbol string) (*types.Instrument, error) {
	var instrument types.Instrument
	if err := d.db.Where("symbol = ?", symbol).First(&instrument).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &instrument, nil
}

func (d *Database) UpdatePrice(symbol string, price float64) error {
	return d.db.Model(&types.Instrument{}).
		Where("symbol = ?", symbol).
		Update("current_price", price).Error
}

func (d *Database) CreateInstruments(instruments []types.Instrument) error {
	return d.db.Create(&instruments).Error
}

func (d *Database) Count() (int64, error) {
	var count int64
	if err := d.db.Model(&types.Instrument{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
