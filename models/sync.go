package models

import (
	"encoding/json"
	"time"
)

type SyncActionType string

const (
	SyncActionSaveForm       SyncActionType = "save_form"
	SyncActionUpdateForm     SyncActionType = "update_form"
	SyncActionDeleteForm     SyncActionType = "delete_form"
	SyncActionSaveSubmission SyncActionType = "save_submission"
)

// SyncAction is a remote write that failed or could not be attempted, waiting in the offline queue.
type SyncAction struct {
	Id        string          `json:"id"`
	Type      SyncActionType  `json:"type"`
	FormId    string          `json:"formId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	UserId    UserId          `json:"userId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type ConnectionStatus string

const (
	ConnectionConnecting   ConnectionStatus = "connecting"
	ConnectionConnected    ConnectionStatus = "connected"
	ConnectionDisconnected ConnectionStatus = "disconnected"
	ConnectionError        ConnectionStatus = "error"
	ConnectionOffline      ConnectionStatus = "offline"
)

func ConnectionStatusFromString(s string) (ConnectionStatus, error) {
	switch ConnectionStatus(s) {
	case ConnectionConnecting, ConnectionConnected, ConnectionDisconnected, ConnectionError, ConnectionOffline:
		return ConnectionStatus(s), nil
	}
	return "", BadParameterError
}

// SaveResult tells the caller whether the form reached the remote store or was queued. A queued save is still
// a success: the local commit went through.
type SaveResult struct {
	FormId  string
	SavedAt time.Time
	Synced  bool
	Queued  bool
}

type ReplayResult struct {
	Processed int
	Remaining int
	Halted    bool
	Skipped   bool
}
