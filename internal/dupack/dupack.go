// Package dupack persists the set of duplicate target paths an operator has
// acknowledged, as a sorted JSON array at config_root/duplicates_ack.json.
package dupack

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

const fileName = "duplicates_ack.json"

func ackPath(configRoot string) string {
	return filepath.Join(configRoot, fileName)
}

// LoadAcknowledged returns the set of previously acknowledged keys. A
// missing or unreadable file yields an empty set rather than an error,
// matching the original service's permissive read.
func LoadAcknowledged(configRoot string) map[string]bool {
	data, err := os.ReadFile(ackPath(configRoot))
	if err != nil {
		return map[string]bool{}
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return map[string]bool{}
	}

	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out
}

// MarkAcknowledged adds keys to the acknowledged set and rewrites the file
// as a sorted JSON array.
func MarkAcknowledged(configRoot string, keys ...string) error {
	existing := LoadAcknowledged(configRoot)
	for _, k := range keys {
		existing[k] = true
	}

	sorted := make([]string, 0, len(existing))
	for k := range existing {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	data, err := json.Marshal(sorted)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configRoot, 0o755); err != nil {
		return err
	}
	return os.WriteFile(ackPath(configRoot), data, 0o644)
}
