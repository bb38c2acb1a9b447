package usecase

import (
	"errors"
	"fmt"
	"time"

	"rag/internal/domain"
	"rag/internal/port"
)

// IndexAdmin wraps a VectorIndex provider with the lifecycle policy the
// pipeline needs: recreate-and-wait semantics, bounded readiness polling,
// and a guarded full wipe.
type IndexAdmin struct {
	provider     port.VectorIndex
	pollInterval time.Duration
	readyTimeout time.Duration
	settleDelay  time.Duration
}

func NewIndexAdmin(provider port.VectorIndex, pollInterval, readyTimeout, settleDelay time.Duration) *IndexAdmin {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if readyTimeout <= 0 {
		readyTimeout = 120 * time.Second
	}
	if settleDelay < 0 {
		settleDelay = 0
	}
	return &IndexAdmin{
		provider:     provider,
		pollInterval: pollInterval,
		readyTimeout: readyTimeout,
		settleDelay:  settleDelay,
	}
}

// EnsureIndex makes the named index exist, be ready, and have the given
// dimension and metric. By default an existing index is deleted and recreated
// so every ingestion starts from zero vectors; with keepExisting the current
// index is reused as-is if present.
func (a *IndexAdmin) EnsureIndex(name string, dimension int, metric domain.Metric, keepExisting bool) error {
	stats, err := a.provider.Describe(name)
	exists := err == nil
	if err != nil && !errors.Is(err, domain.ErrIndexNotFound) {
		return fmt.Errorf("failed to inspect index %q: %w", name, err)
	}

	if exists {
		if keepExisting {
			if !stats.Ready {
				return a.waitReady(name)
			}
			return nil
		}
		if err := a.provider.Delete(name); err != nil {
			return fmt.Errorf("failed to delete index %q: %w", name, err)
		}
		if err := a.waitGone(name); err != nil {
			return err
		}
	}

	if err := a.provider.Create(name, dimension, metric); err != nil {
		return fmt.Errorf("failed to create index %q: %w", name, err)
	}
	return a.waitReady(name)
}

func (a *IndexAdmin) waitReady(name string) error {
	deadline := time.Now().Add(a.readyTimeout)
	for {
		stats, err := a.provider.Describe(name)
		if err == nil && stats.Ready {
			return nil
		}
		if err != nil && !errors.Is(err, domain.ErrIndexNotFound) {
			return fmt.Errorf("failed to poll index %q: %w", name, err)
		}
		if time.Now().After(deadline) {
			return &domain.IndexTimeoutError{Name: name, Elapsed: a.readyTimeout}
		}
		time.Sleep(a.pollInterval)
	}
}

// waitGone blocks until the provider no longer reports the index. Remote
// deletion is asynchronous; creating again too early fails.
func (a *IndexAdmin) waitGone(name string) error {
	deadline := time.Now().Add(a.readyTimeout)
	for {
		_, err := a.provider.Describe(name)
		if errors.Is(err, domain.ErrIndexNotFound) {
			return nil
		}
		if time.Now().After(deadline) {
			return &domain.IndexTimeoutError{Name: name, Elapsed: a.readyTimeout}
		}
		time.Sleep(a.pollInterval)
	}
}

// Settle waits out the provider's indexing lag before counts are trusted.
func (a *IndexAdmin) Settle() {
	if a.settleDelay > 0 {
		time.Sleep(a.settleDelay)
	}
}

func (a *IndexAdmin) Describe(name string) (domain.IndexStats, error) {
	return a.provider.Describe(name)
}

func (a *IndexAdmin) List() ([]string, error) {
	return a.provider.List()
}

// Wipe removes every vector from the index. The confirm token must equal the
// index name; anything else aborts without touching the index.
func (a *IndexAdmin) Wipe(name, confirm string) error {
	if confirm != name {
		return domain.ErrNotConfirmed
	}
	if err := a.provider.DeleteAll(name); err != nil {
		return fmt.Errorf("failed to clear index %q: %w", name, err)
	}

	deadline := time.Now().Add(a.readyTimeout)
	for {
		stats, err := a.provider.Describe(name)
		if err != nil {
			return fmt.Errorf("failed to poll index %q: %w", name, err)
		}
		if stats.VectorCount == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return &domain.IndexTimeoutError{Name: name, Elapsed: a.readyTimeout}
		}
		time.Sleep(a.pollInterval)
	}
}
