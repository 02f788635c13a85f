package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"

	"github.com/togglekeep/togglekeep/internal/logger"
)

// NotificationService pushes best-effort messages about flag state
// changes to configured shoutrrr destinations.
type NotificationService struct {
	urls []string
}

func NewNotificationService(urls []string) *NotificationService {
	return &NotificationService{urls: urls}
}

// FlagChanged announces a flag's new value to every configured URL.
// Delivery failures are logged, never returned: a flaky webhook must
// not fail the flag mutation that already committed.
func (s *NotificationService) FlagChanged(key string, value bool) {
	if len(s.urls) == 0 {
		return
	}

	state := "off"
	if value {
		state = "on"
	}
	msg := fmt.Sprintf("Feature flag %q is now %s", key, state)

	for _, url := range s.urls {
		if err := shoutrrr.Send(url, msg); err != nil {
			logger.WithFields(map[string]interface{}{"flag": key}).WithError(err).Warn("flag change notification failed")
		}
	}
}
