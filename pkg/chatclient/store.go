package chatclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/s21platform/messenger-service/pkg/protocol"
)

// Store reads message history and writes messages over REST when the
// realtime path is unavailable.
type Store struct {
	api    HistoryAPI
	logger Logger

	wg sync.WaitGroup
}

func NewStore(api HistoryAPI, logger Logger) *Store {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Store{api: api, logger: logger}
}

// FetchHistory returns the room's messages oldest first. Failures are logged
// and read as an empty history.
func (s *Store) FetchHistory(ctx context.Context, roomID string, kind protocol.Kind) []protocol.Message {
	var (
		messages []protocol.Message
		err      error
	)

	switch kind {
	case protocol.KindGroup:
		messages, err = s.api.GroupMessages(ctx, roomID)
	default:
		messages, err = s.api.Messages(ctx, roomID)
	}

	if err != nil {
		s.logger.Error(fmt.Sprintf("failed to fetch history of %s: %v", protocol.RoomKey(kind, roomID), err))
		return []protocol.Message{}
	}
	if messages == nil {
		return []protocol.Message{}
	}

	protocol.SortMessages(messages)
	return messages
}

// Persist writes req in the background. A failure is logged and not retried.
func (s *Store) Persist(ctx context.Context, req SendMessageRequest) {
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if _, err := s.api.SendMessage(ctx, req); err != nil {
			s.logger.Error(fmt.Sprintf("failed to persist message from %s: %v", req.SenderID, err))
		}
	}()
}

// Wait blocks until every background write returned.
func (s *Store) Wait() {
	s.wg.Wait()
}
