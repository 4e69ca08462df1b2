// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package receipt reads and writes the YAML install receipt.
//
// The receipt records what a successful install fetched and how the
// converter was invoked. It is advisory: the install guard checks only
// that the output directory exists and never validates the receipt.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/webmodel/pkg/types"
)

// FileName is the receipt's name inside the output directory.
const FileName = "receipt.yaml"

// Write marshals r to path, creating parent directories as needed.
func Write(path string, r types.Receipt) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating receipt directory: %w", err)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling receipt: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads a receipt from path.
func Read(path string) (*types.Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r types.Receipt
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing receipt %s: %w", path, err)
	}
	return &r, nil
}
