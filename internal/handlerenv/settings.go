package handlerenv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

const settingsExt = ".settings"

// Settings is the handlerSettings object of a <seq>.settings file.
type Settings struct {
	PublicSettings map[string]any `json:"publicSettings"`

	// ProtectedSettings is the base64 CMS blob encrypted to the certificate
	// named by ProtectedSettingsCertThumbprint. No verb consumes it.
	ProtectedSettings               string `json:"protectedSettings"`
	ProtectedSettingsCertThumbprint string `json:"protectedSettingsCertThumbprint"`
}

type settingsFile struct {
	RuntimeSettings []struct {
		HandlerSettings Settings `json:"handlerSettings"`
	} `json:"runtimeSettings"`
}

// PublicKeys returns the sorted top-level public setting names.
func (s *Settings) PublicKeys() []string {
	keys := make([]string, 0, len(s.PublicSettings))
	for k := range s.PublicSettings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasProtectedSettings reports whether protected settings were supplied.
func (s *Settings) HasProtectedSettings() bool {
	return s.ProtectedSettings != ""
}

// SequenceNumber resolves the current configuration sequence number. The
// agent's ConfigSequenceNumber variable wins; otherwise the highest numbered
// .settings file in configFolder is used. With neither, the sequence is 0.
func SequenceNumber(getenv func(string) string, configFolder string) (int, error) {
	if v := strings.TrimSpace(getenv(SequenceNumberEnv)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("handlerenv: invalid %s %q", SequenceNumberEnv, v)
		}
		return n, nil
	}

	entries, err := os.ReadDir(configFolder)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("handlerenv: read config folder: %w", err)
	}

	seq := -1
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, settingsExt) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, settingsExt))
		if err != nil || n < 0 {
			continue
		}
		seq = max(seq, n)
	}
	if seq < 0 {
		return 0, nil
	}
	return seq, nil
}

// LoadSettings reads <configFolder>/<seq>.settings. A missing file yields
// nil settings and no error; the agent omits it for handlers without config.
func LoadSettings(configFolder string, seq int) (*Settings, error) {
	path := filepath.Join(configFolder, strconv.Itoa(seq)+settingsExt)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("handlerenv: read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes a .settings document. An empty document or one
// without runtimeSettings yields empty settings.
func ParseSettings(data []byte) (*Settings, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return &Settings{}, nil
	}
	var f settingsFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return nil, fmt.Errorf("handlerenv: parse settings: %w", err)
	}
	if len(f.RuntimeSettings) == 0 {
		return &Settings{}, nil
	}
	s := f.RuntimeSettings[0].HandlerSettings
	return &s, nil
}
