package main

import (
	"encoding/json"
	"fmt"
	"os"
)

var (
	configFile string = getEnv("CONFIG_FILE", "config.json")
)

// readConfig loads the optional overrides file. A missing file means the
// built-in tables apply unchanged; a malformed file is a startup error.
func readConfig() (*Config, error) {
	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file:%s", err)
	}

	// Parse JSON data
	var config Config
	err = json.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("error parsing JSON:%s", err)
	}

	return &config, nil
}

// buildProtocolTable merges config overrides over the built-in table,
// per condition id. Overrides may add new conditions as well.
func buildProtocolTable(config *Config) ProtocolTable {
	table := ProtocolTable{}
	for id, entry := range defaultProtocolTable {
		table[id] = entry
	}
	if config != nil {
		for id, entry := range config.Protocols {
			table[id] = entry
		}
	}
	return table
}

// buildCapacityTable merges facility overrides over the built-in table.
func buildCapacityTable(config *Config) CapacityTable {
	table := CapacityTable{}
	for facility, capacity := range defaultCapacityTable {
		table[facility] = capacity
	}
	if config != nil {
		for facility, capacity := range config.Capacity {
			table[facility] = capacity
		}
	}
	return table
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
