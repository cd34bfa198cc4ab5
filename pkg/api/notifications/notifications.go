package notifications

import (
	"encoding/json"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/rs/zerolog/log"
)

// criticalNotifications get a warn-level log entry when dropped on a full
// channel. Routine progress methods only log at debug.
var criticalNotifications = map[string]bool{
	models.NotificationRunning:             true,
	models.NotificationVolumesMounted:      true,
	models.NotificationVolumesUnmounted:    true,
	models.NotificationVolumesDisconnected: true,
	models.NotificationAutoMountCompleted:  true,
	models.NotificationSyncConflict:        true,
}

// sendNotification marshals the payload and performs a non-blocking send.
// A full channel drops the notification rather than stalling the caller,
// which may be holding service state.
func sendNotification(ns chan<- models.Notification, method string, payload any) {
	var params json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("marshalling notification payload")
			return
		}
		params = data
	}

	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		if criticalNotifications[method] {
			log.Warn().Str("method", method).Msg("notification channel full, dropping notification")
		} else {
			log.Debug().Str("method", method).Msg("notification channel full, dropping notification")
		}
	}
}

func Running(ns chan<- models.Notification) {
	sendNotification(ns, models.NotificationRunning, nil)
}

func VolumesMounted(ns chan<- models.Notification, volume mounts.Volume) {
	sendNotification(ns, models.NotificationVolumesMounted, volume)
}

func VolumesUnmounted(ns chan<- models.Notification, payload models.VolumeEventParams) {
	sendNotification(ns, models.NotificationVolumesUnmounted, payload)
}

func VolumesDisconnected(ns chan<- models.Notification, payload models.VolumeEventParams) {
	sendNotification(ns, models.NotificationVolumesDisconnected, payload)
}

func VolumesReconnecting(ns chan<- models.Notification, payload models.VolumeEventParams) {
	sendNotification(ns, models.NotificationVolumesReconnecting, payload)
}

func AutoMountCompleted(ns chan<- models.Notification, summary mounts.AutoMountSummary) {
	sendNotification(ns, models.NotificationAutoMountCompleted, summary)
}

func SyncCompleted(ns chan<- models.Notification, payload models.SyncCompletedParams) {
	sendNotification(ns, models.NotificationSyncCompleted, payload)
}

func SyncConflict(ns chan<- models.Notification, payload models.SyncConflictParams) {
	sendNotification(ns, models.NotificationSyncConflict, payload)
}
