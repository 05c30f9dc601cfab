package services

import (
	"context"
	"sync"

	"areetampo/circular-economy/internal/models"
)

type fakeEmbedder struct {
	mu     sync.Mutex
	vector []float32
	err    error
	calls  int
	texts  []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu    sync.Mutex
	cases []models.RetrievedCase
	err   error
	calls int
	ks    []int
	block bool
}

func (f *fakeStore) QueryNearest(ctx context.Context, _ []float32, k int) ([]models.RetrievedCase, error) {
	f.mu.Lock()
	f.calls++
	f.ks = append(f.ks, k)
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.RetrievedCase, len(f.cases))
	copy(out, f.cases)
	return out, nil
}

func (f *fakeStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// queueReasoner hands out queued responses in order and records every prompt.
type queueReasoner struct {
	mu        sync.Mutex
	responses []string
	err       error
	systems   []string
	prompts   []string
}

func (q *queueReasoner) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.systems = append(q.systems, systemPrompt)
	q.prompts = append(q.prompts, userPrompt)
	if q.err != nil {
		return "", q.err
	}
	if len(q.responses) == 0 {
		return "{}", nil
	}
	out := q.responses[0]
	q.responses = q.responses[1:]
	return out, nil
}

func (q *queueReasoner) Calls() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.prompts)
}
