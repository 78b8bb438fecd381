package slack

import (
	"sync"

	"github.com/ashureev/hungrybot/internal/domain"
)

// keyQueues runs jobs for the same key in submission order, one at a time.
// Jobs for different keys run concurrently. A key's worker exits when its queue drains.
type keyQueues struct {
	mu      sync.Mutex
	pending map[domain.ConversationKey][]func()
	wg      sync.WaitGroup
}

func newKeyQueues() *keyQueues {
	return &keyQueues{pending: make(map[domain.ConversationKey][]func())}
}

func (q *keyQueues) submit(key domain.ConversationKey, job func()) {
	q.mu.Lock()
	jobs, running := q.pending[key]
	q.pending[key] = append(jobs, job)
	q.mu.Unlock()

	if running {
		return
	}
	q.wg.Add(1)
	go q.drain(key)
}

func (q *keyQueues) drain(key domain.ConversationKey) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		jobs := q.pending[key]
		if len(jobs) == 0 {
			delete(q.pending, key)
			q.mu.Unlock()
			return
		}
		job := jobs[0]
		q.pending[key] = jobs[1:]
		q.mu.Unlock()

		job()
	}
}

func (q *keyQueues) wait() {
	q.wg.Wait()
}
