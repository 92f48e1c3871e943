package state

import json "github.com/goccy/go-json"

// TableJSON renders the transition table as indented JSON.
func TableJSON() ([]byte, error) {
	return json.MarshalIndent(Table, "", "  ")
}
