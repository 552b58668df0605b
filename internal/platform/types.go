package platform

import "context"

// HeaderProvider allows injecting per-request headers (host auth tokens).
type HeaderProvider func() map[string]string

// Event is a UI or moderator action pushed by the host platform.
type Event struct {
	Type     string `json:"type"` // "select" | "dive" | "start" | "moderator"
	Username string `json:"username,omitempty"`
	PostID   string `json:"post_id,omitempty"`
	Row      int    `json:"row,omitempty"`
	Col      int    `json:"col,omitempty"`
	Command  string `json:"command,omitempty"` // moderator action name
}

type EventCallback func(ev *Event)

type StreamState string

const (
	StateDisconnected StreamState = "disconnected"
	StateConnecting   StreamState = "connecting"
	StateConnected    StreamState = "connected"
	StateReconnecting StreamState = "reconnecting"
	StateFailed       StreamState = "failed"
)

type StateCallback func(state StreamState)

// Job describes a scheduled job registered with the host scheduler.
type Job struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Cron string `json:"cron"`
}

// Scheduler is the host's cron-style job capability.
type Scheduler interface {
	ListJobs(ctx context.Context) ([]Job, error)
	RunJob(ctx context.Context, cronExpr, name string) (string, error)
	CancelJob(ctx context.Context, id string) error
}

type submitPostRequest struct {
	Title      string `json:"title"`
	Subreddit  string `json:"subreddit"`
	PreviewPNG string `json:"preview_png,omitempty"` // base64
}

type submitPostResponse struct {
	PostID string `json:"post_id"`
}

type currentUserResponse struct {
	Username string `json:"username"`
}

type toastRequest struct {
	Text string `json:"text"`
}
