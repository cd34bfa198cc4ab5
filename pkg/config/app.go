package config

import "time"

var AppVersion = "DEVELOPMENT"

const (
	AppName           = "sharemount"
	LogFile           = "sharemount.log"
	PidFile           = "sharemount.pid"
	CfgFile           = "config.toml"
	MountsFile        = "mounts.toml"
	VaultFileName     = "credentials.toml"
	ApiRequestTimeout = 30 * time.Second
)
