// Package flash carries one-shot notices across a redirect, the way the
// login/billing flows confirm actions ("Tile added successfully!"). Messages
// ride in the session cookie and are consumed on first read.
package flash

import (
	"net/http"

	"github.com/dalemusser/tilestock/internal/app/system/auth"
)

// Add queues a flash message for the next rendered page.
// Save errors are ignored; a lost notice is harmless.
func Add(mgr *auth.SessionManager, w http.ResponseWriter, r *http.Request, msg string) {
	sess, _ := mgr.GetSession(r)
	sess.AddFlash(msg)
	_ = sess.Save(r, w)
}

// Pop returns all queued messages and clears them from the session.
func Pop(mgr *auth.SessionManager, w http.ResponseWriter, r *http.Request) []string {
	sess, _ := mgr.GetSession(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w) // persist the consumption

	msgs := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
