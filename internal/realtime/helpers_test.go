package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/messenger-service/internal/metrics"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func newQuietLogger(ctrl *gomock.Controller) *logger_lib.MockLoggerInterface {
	logger := logger_lib.NewMockLoggerInterface(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	return logger
}

// newTestSession builds a session without a connection; frames queued to it
// are read back from its send channel.
func newTestSession(userID, username string, buffer int, m *metrics.Metrics, logger logger_lib.LoggerInterface) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:       uuid.NewString(),
		userID:   userID,
		username: username,
		send:     make(chan []byte, buffer),
		limiter:  rate.NewLimiter(rate.Inf, 1),
		ctx:      ctx,
		cancel:   cancel,
		metrics:  m,
		logger:   logger,
	}
}

func nextEvent(t *testing.T, s *Session) protocol.ServerEvent {
	t.Helper()

	select {
	case frame := <-s.send:
		ev, err := protocol.DecodeServerEvent(frame)
		require.NoError(t, err)
		return ev
	case <-time.After(time.Second):
		t.Fatalf("no event queued for session of %s", s.userID)
		return nil
	}
}

func assertNoEvent(t *testing.T, s *Session) {
	t.Helper()

	select {
	case frame := <-s.send:
		t.Fatalf("unexpected event for session of %s: %s", s.userID, frame)
	default:
	}
}
