package shell

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pmarche/keeper/mulligan"
)

// loadDeckFile reads a yaml deck definition:
//
//	size: 60
//	penalty: 0.2
//	free_mulligan: false
//	confidence: 0.65
//	types:
//	  - count: 8
//	    required: 1
//	    by_turn: 1
func loadDeckFile(path string) (mulligan.Deck, error) {
	var deck mulligan.Deck
	data, err := os.ReadFile(path)
	if err != nil {
		return deck, err
	}
	if err := yaml.Unmarshal(data, &deck); err != nil {
		return deck, fmt.Errorf("parsing deck file %s: %w", path, err)
	}
	if deck.Size <= 0 {
		return deck, fmt.Errorf("deck file %s: size must be positive", path)
	}
	return deck, nil
}
