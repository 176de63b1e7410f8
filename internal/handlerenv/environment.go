package handlerenv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Environment is the handlerEnvironment object of HandlerEnvironment.json.
type Environment struct {
	LogFolder     string `json:"logFolder"`
	ConfigFolder  string `json:"configFolder"`
	StatusFolder  string `json:"statusFolder"`
	HeartbeatFile string `json:"heartbeatFile"`
}

type environmentEntry struct {
	Name               string      `json:"name"`
	HandlerEnvironment Environment `json:"handlerEnvironment"`
}

// LoadEnvironment reads HandlerEnvironment.json. The file is a JSON array
// whose first element describes this handler.
func LoadEnvironment(path string) (Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Environment{}, fmt.Errorf("handlerenv: read environment: %w", err)
	}
	return ParseEnvironment(data)
}

// ParseEnvironment decodes the contents of HandlerEnvironment.json.
// Comments and trailing commas are tolerated.
func ParseEnvironment(data []byte) (Environment, error) {
	var entries []environmentEntry
	if err := json.Unmarshal(jsonc.ToJSON(data), &entries); err != nil {
		return Environment{}, fmt.Errorf("handlerenv: parse environment: %w", err)
	}
	if len(entries) == 0 {
		return Environment{}, errors.New("handlerenv: parse environment: no handler entries")
	}
	env := entries[0].HandlerEnvironment
	if env.ConfigFolder == "" {
		return Environment{}, errors.New("handlerenv: parse environment: configFolder is empty")
	}
	if env.StatusFolder == "" {
		return Environment{}, errors.New("handlerenv: parse environment: statusFolder is empty")
	}
	return env, nil
}
