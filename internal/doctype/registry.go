// Package doctype holds the document category registry. Categories are
// defined in an embedded YAML file so the set can be extended without
// touching code, and handlers can serve it to clients for pickers.
package doctype

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/categories.yaml
var configFS embed.FS

// Category is a selectable document type with localized display names.
type Category struct {
	ID      string `yaml:"id" json:"id"`
	LabelEN string `yaml:"label_en" json:"label_en"`
	LabelNO string `yaml:"label_no" json:"label_no"`
}

type registryFile struct {
	Categories []Category `yaml:"categories"`
}

var (
	loadOnce sync.Once
	loaded   []Category
	loadErr  error
)

func load() ([]Category, error) {
	loadOnce.Do(func() {
		data, err := configFS.ReadFile("config/categories.yaml")
		if err != nil {
			loadErr = fmt.Errorf("read categories config: %w", err)
			return
		}
		var file registryFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			loadErr = fmt.Errorf("parse categories config: %w", err)
			return
		}
		loaded = file.Categories
	})
	return loaded, loadErr
}

// Categories returns all registered document categories in file order.
func Categories() ([]Category, error) {
	return load()
}

// Valid reports whether id names a registered category.
func Valid(id string) bool {
	cats, err := load()
	if err != nil {
		return false
	}
	for _, c := range cats {
		if c.ID == id {
			return true
		}
	}
	return false
}
