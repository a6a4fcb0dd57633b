// Package queue carries jobs between the API services and the background
// workers. Delivery is at-least-once: a consumer crash after dequeue loses
// one attempt, never the guarantee that work was accepted, so job handlers
// must tolerate redelivery.
package queue

import "context"

const (
	// FileQueue carries thumbnail jobs for uploaded images.
	FileQueue = "fileQueue"
	// UserQueue carries one-shot welcome jobs for new users.
	UserQueue = "userQueue"
)

// ThumbnailJob instructs a worker to render resized derivatives of an image.
type ThumbnailJob struct {
	UserID    string `json:"userId"`
	FileID    string `json:"fileId"`
	LocalPath string `json:"localPath"`
}

// WelcomeJob triggers the one-shot welcome side effect for a new user.
type WelcomeJob struct {
	UserID string `json:"userId"`
}

// Producer is a long-lived handle owned by the services; it outlives any
// individual request.
type Producer interface {
	Enqueue(ctx context.Context, queue string, payload any) error
}

// Consumer blocks until a job is available on the named queue or ctx ends.
type Consumer interface {
	Dequeue(ctx context.Context, queue string) ([]byte, error)
}
