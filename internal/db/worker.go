package db

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

var ErrWorkerClosed = errors.New("db writer closed")

// TxFn runs inside a transaction owned by the Worker.  Returning an error
// rolls the transaction back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

type job struct {
	ctx context.Context
	fn  TxFn
	ch  chan error
}

// Worker serialises every write onto one goroutine so SQLite never sees two
// concurrent writers.
type Worker struct {
	db   *sql.DB
	jobs chan job
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func NewWorker(db *sql.DB) *Worker {
	w := &Worker{
		db:   db,
		jobs: make(chan job, 256),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.loop()
	return w
}

// Close drains queued jobs and stops the loop.  Safe to call more than once.
func (w *Worker) Close() {
	w.once.Do(func() { close(w.quit) })
	<-w.done
}

func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	ch := make(chan error, 1)
	j := job{ctx: ctx, fn: fn, ch: ch}

	select {
	case <-w.quit:
		return ErrWorkerClosed
	default:
	}

	select {
	case w.jobs <- j:
	case <-w.quit:
		return ErrWorkerClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// The loop finishes a started transaction even if ctx expires here; the
	// result lands in the buffered ch and is dropped.
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		select {
		case err := <-ch:
			return err
		default:
			return ErrWorkerClosed
		}
	}
}

func (w *Worker) loop() {
	defer close(w.done)

	for {
		select {
		case j := <-w.jobs:
			w.run(j)
		case <-w.quit:
			for {
				select {
				case j := <-w.jobs:
					w.run(j)
				default:
					return
				}
			}
		}
	}
}

func (w *Worker) run(j job) {
	tx, err := w.db.BeginTx(j.ctx, nil)
	if err != nil {
		j.ch <- err
		return
	}

	if err := j.fn(j.ctx, tx); err != nil {
		_ = tx.Rollback()
		j.ch <- err
		return
	}

	j.ch <- tx.Commit()
}
