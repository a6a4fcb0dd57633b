package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"filedrive.dev/api/internal/apperr"
	"filedrive.dev/api/internal/queue"
)

// ProcessWelcome performs the one-shot welcome side effect for a new user.
// The log line is the effect; email is best-effort on top when configured.
func (w *Worker) ProcessWelcome(ctx context.Context, payload []byte) error {
	var job queue.WelcomeJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("malformed welcome payload: %w", err)
	}
	if job.UserID == "" {
		return errors.New("missing userId")
	}

	userID, err := primitive.ObjectIDFromHex(job.UserID)
	if err != nil {
		return fmt.Errorf("bad userId %q: %w", job.UserID, err)
	}

	user, err := w.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}
	if user == nil {
		return apperr.NotFoundErr("User not found")
	}

	w.logger.Infof("Welcome %s", user.Email)

	if w.Mailer != nil {
		if err := w.Mailer(user.Email); err != nil {
			w.logger.Warnf("Welcome email to %s failed: %s", user.Email, err)
		}
	}
	return nil
}
