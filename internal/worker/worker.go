// Package worker drains the job queues. Workers hold no mutable state, so any
// number of instances may consume the same queues concurrently; redelivered
// jobs rewrite identical derivatives and are therefore idempotent.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"filedrive.dev/api/internal/database"
	"filedrive.dev/api/internal/queue"
)

type FileStore interface {
	GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*database.File, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*database.User, error)
}

type Worker struct {
	files  FileStore
	users  UserStore
	logger *logrus.Logger

	// Mailer sends the welcome email. Nil disables email entirely.
	Mailer func(toEmail string) error
}

func New(files FileStore, users UserStore, logger *logrus.Logger) *Worker {
	return &Worker{files: files, users: users, logger: logger}
}

// Runner pulls jobs from the queues and dispatches them to the worker until
// ctx is cancelled. A job failure is terminal for that attempt; redelivery is
// the queue's policy, not ours.
type Runner struct {
	consumer    queue.Consumer
	worker      *Worker
	logger      *logrus.Logger
	concurrency int
}

func NewRunner(consumer queue.Consumer, worker *Worker, logger *logrus.Logger, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{consumer: consumer, worker: worker, logger: logger, concurrency: concurrency}
}

func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.consume(ctx, queue.FileQueue, r.worker.ProcessThumbnail)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.consume(ctx, queue.UserQueue, r.worker.ProcessWelcome)
		}()
	}
	wg.Wait()
}

func (r *Runner) consume(ctx context.Context, name string, handle func(context.Context, []byte) error) {
	for {
		payload, err := r.consumer.Dequeue(ctx, name)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			r.logger.Errorf("Dequeue on %s failed: %s", name, err)
			time.Sleep(time.Second)
			continue
		}
		if err := handle(ctx, payload); err != nil {
			r.logger.Errorf("%s job failed: %s", name, err)
		}
	}
}
