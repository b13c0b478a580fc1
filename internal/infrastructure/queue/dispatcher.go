package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tesloshop/shop-auth/internal/api/metrics"
	"github.com/tesloshop/shop-auth/internal/core/realtime"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Peer is the write side of one live connection.
type Peer interface {
	WriteEvent(ev realtime.Event) error
	Close() error
}

type delivery struct {
	connectionID string
	event        realtime.Event
}

// Dispatcher routes outbound events to a fixed set of writer workers using
// consistent hashing on the connection id. All writes to one connection
// happen on the same worker, which keeps per-connection ordering and means a
// connection never has two concurrent writers.
type Dispatcher struct {
	workers []chan delivery
	log     zerolog.Logger

	mu    sync.RWMutex
	peers map[string]Peer
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan delivery, numWorkers),
		log:     log,
		peers:   make(map[string]Peer),
	}
	for i := range d.workers {
		d.workers[i] = make(chan delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Attach makes a connection reachable by Broadcast.
func (d *Dispatcher) Attach(connectionID string, p Peer) {
	d.mu.Lock()
	d.peers[connectionID] = p
	d.mu.Unlock()
}

// Detach forgets a connection. Deliveries already queued for it are dropped.
func (d *Dispatcher) Detach(connectionID string) {
	d.mu.Lock()
	delete(d.peers, connectionID)
	d.mu.Unlock()
}

// Broadcast queues ev for every connection in connectionIDs. It never blocks:
// when a worker's queue is full the delivery is dropped and counted.
func (d *Dispatcher) Broadcast(connectionIDs []string, ev realtime.Event) {
	for _, id := range connectionIDs {
		idx := d.shardIndex(id)
		select {
		case d.workers[idx] <- delivery{connectionID: id, event: ev}:
			metrics.GatewayQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		default:
			metrics.GatewayDeliveriesDroppedTotal.Inc()
			d.log.Warn().Str("connection_id", id).Str("event", ev.Name).Msg("delivery queue full, dropping event")
		}
	}
}

// shardIndex maps a connection id deterministically to a worker index.
func (d *Dispatcher) shardIndex(connectionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(connectionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) peer(connectionID string) (Peer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.peers[connectionID]
	return p, ok
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan delivery) {
	depth := metrics.GatewayQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case del, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))

			p, attached := d.peer(del.connectionID)
			if !attached {
				continue
			}
			if err := p.WriteEvent(del.event); err != nil {
				d.log.Error().Err(err).
					Str("connection_id", del.connectionID).
					Int("worker_id", id).
					Msg("event delivery failed, closing connection")
				d.Detach(del.connectionID)
				_ = p.Close()
				continue
			}
			metrics.GatewayEventsDeliveredTotal.WithLabelValues(del.event.Name).Inc()
		}
	}
}
