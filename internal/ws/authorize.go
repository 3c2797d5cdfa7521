package ws

import (
	"context"
	"strings"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/pubsub"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/service"
)

const sessionPrefix = "session:"

// SessionAuthorizer allows the medication channel to everyone and a
// session channel only to the session's owner
func SessionAuthorizer(sessions *service.SessionService) Authorizer {
	return func(ctx context.Context, userID, channel string) bool {
		if channel == pubsub.MedicationChannel {
			return true
		}
		id, ok := strings.CutPrefix(channel, sessionPrefix)
		if !ok || id == "" {
			return false
		}
		_, err := sessions.Get(ctx, userID, id)
		return err == nil
	}
}
