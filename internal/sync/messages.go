package sync

import (
	"time"

	"github.com/flumox/flumox-server/internal/view"
)

type incomingMessage struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	Compress bool   `json:"compress,omitempty"`
}

const (
	outMalformedMessage = "malformed-message"
	outUnknownToken     = "unknown-token"
	outView             = "view"
	outPong             = "pong"
	outError            = "error"
)

// reason is the small public error taxonomy a client may see over the wire:
// database failures and expression/config evaluation failures, mirroring
// the original's InternalError/EvalError split.
type reason string

const (
	reasonDatabase reason = "database"
	reasonConfig   reason = "config"
)

type outgoingMessage struct {
	Type       string            `json:"type"`
	Widgets    []view.WidgetView `json:"widgets,omitempty"`
	ValidUntil *time.Time        `json:"valid_until,omitempty"`
	Reason     reason            `json:"reason,omitempty"`
}
