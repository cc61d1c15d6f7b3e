package fakeapi

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/fjod/papapizza/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenu []byte

type Menu struct {
	Vendor   string           `yaml:"vendor"`
	Products []domain.Product `yaml:"products"`
}

func DefaultMenu() (Menu, error) {
	return ParseMenu(defaultMenu)
}

func LoadMenu(path string) (Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Menu{}, fmt.Errorf("read menu %s: %w", path, err)
	}
	return ParseMenu(data)
}

func ParseMenu(data []byte) (Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Menu{}, fmt.Errorf("parse menu: %w", err)
	}
	seen := make(map[domain.ProductID]bool, len(m.Products))
	for _, p := range m.Products {
		if p.ID == "" {
			return Menu{}, fmt.Errorf("menu product %q has no id", p.Name)
		}
		if seen[p.ID] {
			return Menu{}, fmt.Errorf("menu product id %s is duplicated", p.ID)
		}
		if p.Price.IsNegative() {
			return Menu{}, fmt.Errorf("menu product %s has a negative price", p.ID)
		}
		seen[p.ID] = true
	}
	return m, nil
}
