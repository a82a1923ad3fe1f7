package middleware_test

import (
	"context"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// recordingStore keeps the exact State a middleware handed down, uncloned,
// so tests can inspect what would have been persisted.
type recordingStore map[string]domain.State

func newRecordingStore() recordingStore { return recordingStore{} }

func (s recordingStore) Save(_ context.Context, id string, state domain.State) error {
	s[id] = state
	return nil
}

func (s recordingStore) Load(_ context.Context, id string) (domain.State, error) {
	state, ok := s[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state, nil
}

func (s recordingStore) Delete(_ context.Context, id string) error {
	delete(s, id)
	return nil
}

func (s recordingStore) List(context.Context) ([]string, error) {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ ports.StateStore = recordingStore(nil)
