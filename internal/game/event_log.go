package game

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize    = 1024                   // Pending events before the oldest are dropped
	MaxEventsPerSource = 50                     // Per-enemy rate limit per second
	BatchFlushSize     = 64                     // Events per batch write
	BatchFlushInterval = 100 * time.Millisecond // How often to flush
)

// EventLog is a bounded, rate-limited JSONL writer. Emit never blocks the
// tick; a background goroutine batches events to the sink.
type EventLog struct {
	mu      sync.Mutex
	pending []Event
	seq     uint64

	globalLimiter  *rate.Limiter
	sourceLimiters map[string]*rate.Limiter

	sink     io.Writer
	closer   io.Closer
	stopChan chan struct{}
	stopOnce sync.Once
	done     sync.WaitGroup
	running  atomic.Bool

	droppedCount atomic.Uint64
	totalCount   atomic.Uint64
	writtenCount atomic.Uint64
}

// NewEventLog creates a log admitting at most perSecond events per second.
func NewEventLog(perSecond int) *EventLog {
	if perSecond <= 0 {
		perSecond = 200
	}
	burst := perSecond / 10
	if burst < 1 {
		burst = 1
	}
	return &EventLog{
		pending:        make([]Event, 0, BatchFlushSize),
		globalLimiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		sourceLimiters: make(map[string]*rate.Limiter),
		stopChan:       make(chan struct{}),
	}
}

// Open starts writing to filePath, appending. An empty path leaves the log
// stopped so Emit becomes a no-op.
func (el *EventLog) Open(filePath string) error {
	if filePath == "" {
		return nil
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	el.closer = file
	el.Start(file)
	log.Printf("📝 Event log writing to %s", filePath)
	return nil
}

// Start begins the async writer goroutine on w.
func (el *EventLog) Start(w io.Writer) {
	if el.running.Swap(true) {
		return
	}
	el.sink = w
	el.done.Add(1)
	go el.writerLoop()
}

// Stop flushes what is pending and closes the file.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		if !el.running.Load() {
			return
		}
		close(el.stopChan)
		el.done.Wait()
		el.running.Store(false)
		if el.closer != nil {
			el.closer.Close()
		}
	})
}

// Emit queues event. Returns false when rate limited or the log is stopped.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.globalLimiter.Allow() {
		el.droppedCount.Add(1)
		return false
	}
	if event.SourceID != "" && !el.sourceLimiter(event.SourceID).Allow() {
		el.droppedCount.Add(1)
		return false
	}

	if len(el.pending) >= EventBufferSize {
		el.pending = el.pending[1:]
		el.droppedCount.Add(1)
	}
	el.seq++
	event.Sequence = el.seq
	el.pending = append(el.pending, event)
	el.totalCount.Add(1)
	return true
}

// EmitSimple builds and queues an event.
func (el *EventLog) EmitSimple(eventType EventType, tickNum uint64, sourceID string, payload interface{}) bool {
	return el.Emit(NewEvent(eventType, tickNum, sourceID, payload))
}

func (el *EventLog) sourceLimiter(id string) *rate.Limiter {
	l, ok := el.sourceLimiters[id]
	if !ok {
		l = rate.NewLimiter(MaxEventsPerSource, MaxEventsPerSource/5)
		el.sourceLimiters[id] = l
	}
	return l
}

// Forget drops the limiter kept for a removed source.
func (el *EventLog) Forget(id string) {
	el.mu.Lock()
	delete(el.sourceLimiters, id)
	el.mu.Unlock()
}

func (el *EventLog) writerLoop() {
	defer el.done.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	w := bufio.NewWriter(el.sink)
	for {
		select {
		case <-el.stopChan:
			for el.flush(w) > 0 {
			}
			return
		case <-ticker.C:
			el.flush(w)
		}
	}
}

// flush writes up to one batch and returns how many events it wrote.
func (el *EventLog) flush(w *bufio.Writer) int {
	el.mu.Lock()
	n := len(el.pending)
	if n > BatchFlushSize {
		n = BatchFlushSize
	}
	batch := make([]Event, n)
	copy(batch, el.pending[:n])
	el.pending = el.pending[n:]
	el.mu.Unlock()

	if n == 0 {
		return 0
	}
	enc := json.NewEncoder(w)
	for _, event := range batch {
		if err := enc.Encode(event); err != nil {
			log.Printf("⚠️ Event log encode: %v", err)
			continue
		}
		el.writtenCount.Add(1)
	}
	if err := w.Flush(); err != nil {
		log.Printf("⚠️ Event log write: %v", err)
	}
	return n
}

// GetStats returns counters for monitoring.
func (el *EventLog) GetStats() map[string]interface{} {
	el.mu.Lock()
	pending := len(el.pending)
	el.mu.Unlock()

	return map[string]interface{}{
		"total":   el.totalCount.Load(),
		"dropped": el.droppedCount.Load(),
		"written": el.writtenCount.Load(),
		"pending": pending,
		"running": el.running.Load(),
	}
}

// GetDroppedCount returns the number of dropped events
func (el *EventLog) GetDroppedCount() uint64 { return el.droppedCount.Load() }

// GetTotalCount returns the number of accepted events
func (el *EventLog) GetTotalCount() uint64 { return el.totalCount.Load() }
