package models

type MountParams struct {
	ConfigID   *string `json:"configId"   validate:"omitempty,uuid"`
	Server     *string `json:"server"     validate:"omitempty,hostname_rfc1123|ip"`
	Share      *string `json:"share"      validate:"omitempty,sharename"`
	MountPoint *string `json:"mountPoint" validate:"omitempty,abspath"`
	Username   *string `json:"username"`
	Password   *string `json:"password"`
	Domain     *string `json:"domain"`
	Remember   bool    `json:"remember"`
}

type UnmountParams struct {
	MountPoint string `json:"mountPoint" validate:"required,abspath"`
}

// ReconnectCancelParams with an empty mount point cancels every pending
// reconnect attempt.
type ReconnectCancelParams struct {
	MountPoint string `json:"mountPoint" validate:"omitempty,abspath"`
}

type NewConfigParams struct {
	Username        *string `json:"username"`
	Password        *string `json:"password"`
	Domain          *string `json:"domain"`
	Server          string  `json:"server"          validate:"required,hostname_rfc1123|ip"`
	Share           string  `json:"share"           validate:"required,sharename"`
	MountPoint      string  `json:"mountPoint"      validate:"omitempty,abspath"`
	SyncPath        string  `json:"syncPath"        validate:"omitempty,abspath"`
	AutoMount       bool    `json:"autoMount"`
	SaveCredentials bool    `json:"saveCredentials"`
	SyncEnabled     bool    `json:"syncEnabled"`
}

type UpdateConfigParams struct {
	Server          *string `json:"server"          validate:"omitempty,hostname_rfc1123|ip"`
	Share           *string `json:"share"           validate:"omitempty,sharename"`
	MountPoint      *string `json:"mountPoint"      validate:"omitempty,abspath"`
	SyncPath        *string `json:"syncPath"        validate:"omitempty,abspath"`
	AutoMount       *bool   `json:"autoMount"`
	SaveCredentials *bool   `json:"saveCredentials"`
	SyncEnabled     *bool   `json:"syncEnabled"`
	ID              string  `json:"id"              validate:"required,uuid"`
}

type DeleteConfigParams struct {
	ID string `json:"id" validate:"required,uuid"`
}

type UpdateSettingsParams struct {
	DebugLogging         *bool   `json:"debugLogging"`
	AutoReconnect        *bool   `json:"autoReconnect"`
	AutoMountOnStart     *bool   `json:"autoMountOnStart"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
	TelemetryEnabled     *bool   `json:"telemetryEnabled"`
	VaultBackend         *string `json:"vaultBackend"   validate:"omitempty,oneof=keychain file"`
	MountTimeout         *string `json:"mountTimeout"   validate:"omitempty,duration"`
	ReconnectDelay       *string `json:"reconnectDelay" validate:"omitempty,duration"`
	ScanTimeout          *string `json:"scanTimeout"    validate:"omitempty,duration"`
	SyncInterval         *string `json:"syncInterval"   validate:"omitempty,duration"`
}
