// Package viewmodel holds the per-screen state machines that WebSocket
// sessions render. Each view model publishes its state as a stream and
// reports one-shot notices (action failures, confirmations) on a channel.
package viewmodel

// State is implemented by every screen state. Name is the wire tag.
type State interface {
	Name() string
}

// Notice is a transient, dismissible message for the user.
type Notice struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

const noticeBuffer = 16

type notices chan Notice

func newNotices() notices { return make(notices, noticeBuffer) }

// post drops the notice when nobody has drained the backlog.
func (n notices) post(message string, isErr bool) {
	select {
	case n <- Notice{Message: message, Error: isErr}:
	default:
	}
}
