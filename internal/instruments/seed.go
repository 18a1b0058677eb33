package instruments

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
)

//go:embed seed.yaml
var seedData []byte

type seedFile struct {
	Instruments []seedInstrument `yaml:"instruments"`
}

type seedInstrument struct {
	Symbol         string  `yaml:"symbol"`
	Name           string  `yaml:"name"`
	Exchange       string  `yaml:"exchange"`
	InstrumentType string  `yaml:"instrument_type"`
	Price          float64 `yaml:"price"`
}

// loadSeed parses the embedded instrument seed file.
func loadSeed() ([]types.Instrument, error) {
	var file seedFile
	if err := yaml.Unmarshal(seedData, &file); err != nil {
		return nil, fmt.Errorf("failed to parse instrument seed: %w", err)
	}

	instruments := make([]types.Instrument, 0, len(file.Instruments))
	for _, s := range file.Instruments {
		if s.Symbol == "" || s.Price <= 0 {
			return nil, fmt.Errorf("invalid seed entry for symbol %q", s.Symbol)
		}
		instruments = append(instruments, types.Instrument{
			Symbol:         s.Symbol,
			Name:           s.Name,
			Exchange:       s.Exchange,
			InstrumentType: s.InstrumentType,
			CurrentPrice:   s.Price,
		})
	}
	return instruments, nil
}
