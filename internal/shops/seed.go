package shops

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed/demo.yaml
var demoSeed []byte

// SeedFile is the YAML layout for registry seeds.
type SeedFile struct {
	Shops []SeedShop `yaml:"shops"`
}

// SeedShop is one shop entry in a seed file.
type SeedShop struct {
	Name    string     `yaml:"name"`
	Address string     `yaml:"address"`
	Phone   string     `yaml:"phone"`
	Tires   []SeedTire `yaml:"tires"`
}

// SeedTire is one inventory line in a seed file.
type SeedTire struct {
	Code     string  `yaml:"code"`
	Brand    string  `yaml:"brand"`
	Model    string  `yaml:"model"`
	Size     string  `yaml:"size"`
	Price    float64 `yaml:"price"`
	Quantity int     `yaml:"quantity"`
}

// LoadSeed reads a seed file from path, or the embedded demo seed when path is empty.
func LoadSeed(path string) (SeedFile, error) {
	data := demoSeed
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return SeedFile{}, fmt.Errorf("read seed file: %w", err)
		}
		data = raw
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(data []byte) (SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed: %w", err)
	}
	for i, s := range seed.Shops {
		if strings.TrimSpace(s.Name) == "" {
			return SeedFile{}, fmt.Errorf("parse seed: shop %d has no name", i)
		}
	}
	return seed, nil
}
