package store

import "context"

// Lock is a mutex whose Acquire gives up when the context is done.
type Lock chan struct{}

func NewLock() Lock {
	return make(Lock, 1)
}

func (l Lock) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l Lock) Release() {
	<-l
}
