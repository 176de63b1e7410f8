package handlerenv

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Azure/aks-node-extension/internal/fsutil"
)

// ReadMostRecentSequence returns the sequence number stored in path.
// ok is false when the file does not exist.
func ReadMostRecentSequence(path string) (seq int, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("handlerenv: read %s: %w", path, err)
	}
	seq, err = strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false, fmt.Errorf("handlerenv: parse %s: %w", path, err)
	}
	return seq, true, nil
}

// WriteMostRecentSequence stores seq in path atomically.
func WriteMostRecentSequence(path string, seq int) error {
	if err := fsutil.WriteFileAtomic(path, []byte(strconv.Itoa(seq)), 0o600); err != nil {
		return fmt.Errorf("handlerenv: write most recent sequence: %w", err)
	}
	return nil
}

// RemoveMostRecentSequence deletes path. A missing file is not an error.
func RemoveMostRecentSequence(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("handlerenv: remove most recent sequence: %w", err)
	}
	return nil
}
