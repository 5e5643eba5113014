package realtime

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/messenger-service/internal/metrics"
	"github.com/s21platform/messenger-service/internal/model"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

const persistTimeout = 5 * time.Second

type jobKind string

const (
	jobInsertMessage  jobKind = "insert_message"
	jobUpdateStatus   jobKind = "update_status"
	jobUpsertReaction jobKind = "upsert_reaction"
)

type persistJob struct {
	kind jobKind
	room string

	message   *model.Message
	messageID string
	status    protocol.Status
	reaction  *model.Reaction
}

// Persister writes realtime traffic to the store in the background. Jobs of
// one room always land on the same worker, so a message is inserted before its
// status updates and reactions.
type Persister struct {
	store   Store
	shards  []chan persistJob
	metrics *metrics.Metrics
	logger  logger_lib.LoggerInterface

	wg sync.WaitGroup
}

func NewPersister(store Store, workers, queue int, m *metrics.Metrics, logger logger_lib.LoggerInterface) *Persister {
	if workers < 1 {
		workers = 1
	}

	shards := make([]chan persistJob, workers)
	for i := range shards {
		shards[i] = make(chan persistJob, queue)
	}

	return &Persister{
		store:   store,
		shards:  shards,
		metrics: m,
		logger:  logger,
	}
}

// Run starts the workers and blocks until ctx is done and queued jobs are flushed.
func (p *Persister) Run(ctx context.Context) {
	for _, shard := range p.shards {
		p.wg.Add(1)
		go p.work(ctx, shard)
	}
	p.wg.Wait()
}

func (p *Persister) work(ctx context.Context, jobs chan persistJob) {
	defer p.wg.Done()

	for {
		select {
		case job := <-jobs:
			p.process(context.WithoutCancel(ctx), job)
		case <-ctx.Done():
			for {
				select {
				case job := <-jobs:
					p.process(context.WithoutCancel(ctx), job)
				default:
					return
				}
			}
		}
	}
}

func (p *Persister) SaveMessage(msg protocol.Message) bool {
	return p.enqueue(persistJob{kind: jobInsertMessage, room: msg.Room(), message: model.MessageFromProtocol(msg)})
}

func (p *Persister) UpdateStatus(room, messageID string, status protocol.Status) bool {
	return p.enqueue(persistJob{kind: jobUpdateStatus, room: room, messageID: messageID, status: status})
}

func (p *Persister) UpsertReaction(room string, reaction *model.Reaction) bool {
	return p.enqueue(persistJob{kind: jobUpsertReaction, room: room, reaction: reaction})
}

// enqueue never blocks the realtime path; a full shard drops the job.
func (p *Persister) enqueue(job persistJob) bool {
	shard := p.shards[shardOf(job.room, len(p.shards))]

	select {
	case shard <- job:
		p.metrics.PersistQueueLength.Inc()
		return true
	default:
		p.metrics.PersistFailures.WithLabelValues(string(job.kind)).Inc()
		p.logger.Error(fmt.Sprintf("persist queue full, dropping %s job for room %s", job.kind, job.room))
		return false
	}
}

func (p *Persister) process(ctx context.Context, job persistJob) {
	p.metrics.PersistQueueLength.Dec()

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	var err error
	switch job.kind {
	case jobInsertMessage:
		err = p.store.SaveMessage(ctx, job.message)
	case jobUpdateStatus:
		_, err = p.store.UpdateMessageStatus(ctx, job.messageID, job.status)
	case jobUpsertReaction:
		err = p.store.UpsertReaction(ctx, job.reaction)
	default:
		err = fmt.Errorf("unknown job kind %q", job.kind)
	}

	if err != nil {
		p.metrics.PersistFailures.WithLabelValues(string(job.kind)).Inc()
		p.logger.Error(fmt.Sprintf("failed to persist %s for room %s: %v", job.kind, job.room, err))
	}
}

func shardOf(room string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room))
	return int(h.Sum32() % uint32(n))
}
