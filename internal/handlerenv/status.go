package handlerenv

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Azure/aks-node-extension/internal/fsutil"
	"github.com/Azure/aks-node-extension/internal/lifecycle"
)

const statusTimeLayout = "2006-01-02T15:04:05Z"

// StatusReport is one element of a <seq>.status file.
type StatusReport struct {
	Version      string    `json:"version"`
	TimestampUTC string    `json:"timestampUTC"`
	Status       StatusRec `json:"status"`
}

// StatusRec is the status object the agent surfaces to the control plane.
type StatusRec struct {
	Name             string           `json:"name"`
	Operation        string           `json:"operation"`
	Status           string           `json:"status"`
	Code             int              `json:"code"`
	FormattedMessage FormattedMessage `json:"formattedMessage"`
}

// FormattedMessage is a localised status message.
type FormattedMessage struct {
	Lang    string `json:"lang"`
	Message string `json:"message"`
}

// NewStatusReport converts a lifecycle report into the agent's status document.
// A non-numeric sub-status falls back to the exit code.
func NewStatusReport(name string, r lifecycle.Report, now time.Time) []StatusReport {
	code, err := strconv.Atoi(r.SubStatus)
	if err != nil {
		code = r.ExitCode
	}
	return []StatusReport{{
		Version:      "1.0",
		TimestampUTC: now.UTC().Format(statusTimeLayout),
		Status: StatusRec{
			Name:      name,
			Operation: r.Operation,
			Status:    r.Status,
			Code:      code,
			FormattedMessage: FormattedMessage{
				Lang:    "en-US",
				Message: r.Message,
			},
		},
	}}
}

// WriteStatus writes the status document for seq into statusFolder.
func WriteStatus(statusFolder string, seq int, doc []StatusReport) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("handlerenv: marshal status: %w", err)
	}
	path := filepath.Join(statusFolder, strconv.Itoa(seq)+".status")
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("handlerenv: write status: %w", err)
	}
	return nil
}
