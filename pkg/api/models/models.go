package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

const (
	NotificationRunning             = "running"
	NotificationVolumesMounted      = "volumes.mounted"
	NotificationVolumesUnmounted    = "volumes.unmounted"
	NotificationVolumesDisconnected = "volumes.disconnected"
	NotificationVolumesReconnecting = "volumes.reconnecting"
	NotificationAutoMountCompleted  = "mounts.automount.completed"
	NotificationSyncCompleted       = "sync.completed"
	NotificationSyncConflict        = "sync.conflict"
)

const (
	MethodMounts                = "mounts"
	MethodMountsMount           = "mounts.mount"
	MethodMountsUnmount         = "mounts.unmount"
	MethodMountsAutoMount       = "mounts.automount"
	MethodMountsAutoMountCancel = "mounts.automount.cancel"
	MethodMountsReconnectCancel = "mounts.reconnect.cancel"
	MethodConfigs               = "configs"
	MethodConfigsNew            = "configs.new"
	MethodConfigsUpdate         = "configs.update"
	MethodConfigsDelete         = "configs.delete"
	MethodNetworkScan           = "network.scan"
	MethodSettings              = "settings"
	MethodSettingsUpdate        = "settings.update"
	MethodSettingsReload        = "settings.reload"
	MethodVersion               = "version"
)

type Notification struct {
	Method string
	Params json.RawMessage
}

type RequestObject struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uuid.UUID      `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ResponseObject struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
}

// ResponseErrorObject exists for sending errors, so we can omit result from
// the response, but so nil responses are still returned when using the main
// ResponseObject.
type ResponseErrorObject struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
	Error   *ErrorObject `json:"error"`
}
