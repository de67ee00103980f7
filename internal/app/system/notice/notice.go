// Package notice carries transient user notices (toasts) across the
// post/redirect/get hop using session flashes.
package notice

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

// Kinds map to toast styles.
const (
	Success = "success"
	Info    = "info"
	Error   = "error"
)

const flashKey = "_notices"
const sep = "\x1f"

// Notice is one message shown once.
type Notice struct {
	Kind string
	Text string
}

// SessionSource yields the request's session; auth.SessionManager satisfies it.
type SessionSource interface {
	GetSession(r *http.Request) (*sessions.Session, error)
}

// Push stores n for the next page render.
func Push(w http.ResponseWriter, r *http.Request, src SessionSource, n Notice) error {
	sess, err := src.GetSession(r)
	if err != nil && sess == nil {
		return err
	}
	sess.AddFlash(n.Kind+sep+n.Text, flashKey)
	return sess.Save(r, w)
}

// Pop returns and clears the pending notices. Failures yield no notices.
func Pop(w http.ResponseWriter, r *http.Request, src SessionSource) []Notice {
	sess, err := src.GetSession(r)
	if err != nil || sess == nil {
		return nil
	}
	flashes := sess.Flashes(flashKey)
	if len(flashes) == 0 {
		return nil
	}
	_ = sess.Save(r, w)

	out := make([]Notice, 0, len(flashes))
	for _, f := range flashes {
		s, ok := f.(string)
		if !ok {
			continue
		}
		kind, text, found := strings.Cut(s, sep)
		if !found {
			kind, text = Info, s
		}
		out = append(out, Notice{Kind: kind, Text: text})
	}
	return out
}

// LoadFailed is the notice shown when a loader falls back to stale data.
func LoadFailed(entity string) Notice {
	return Notice{Kind: Error, Text: "Failed to load " + entity + "."}
}
