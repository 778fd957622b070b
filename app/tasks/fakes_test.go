package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lysyi3m/jsonfeed-views/app/database"
)

type fakeNodeRepo struct {
	mu     sync.Mutex
	nodes  []database.Node
	hashes map[string]bool
	err    error
}

func newFakeNodeRepo(existingHashes ...string) *fakeNodeRepo {
	repo := &fakeNodeRepo{hashes: make(map[string]bool)}
	for _, h := range existingHashes {
		repo.hashes[h] = true
	}
	return repo
}

func (r *fakeNodeRepo) UpsertNode(node database.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nodes = append(r.nodes, node)
	r.hashes[node.ContentHash] = true
	return nil
}

func (r *fakeNodeRepo) CheckDuplicate(sourceName, contentHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hashes[contentHash], nil
}

func (r *fakeNodeRepo) GetNodeCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes), nil
}

type fakeSourceRepo struct {
	mu       sync.Mutex
	sources  map[string]*database.Source
	upserted []string
}

func newFakeSourceRepo() *fakeSourceRepo {
	return &fakeSourceRepo{sources: make(map[string]*database.Source)}
}

func (r *fakeSourceRepo) GetSource(name string) (*database.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sources[name], nil
}

func (r *fakeSourceRepo) GetSourceCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sources), nil
}

func (r *fakeSourceRepo) UpsertSource(name, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, name)
	if _, ok := r.sources[name]; !ok {
		r.sources[name] = &database.Source{Name: name, URL: url}
	}
	return nil
}

func (r *fakeSourceRepo) UpdateSourceMetadata(name, title string, nextFetch time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.sources[name]
	if !ok {
		src = &database.Source{Name: name}
		r.sources[name] = src
	}
	src.Title = title
	src.NextFetchAt = &nextFetch
	return nil
}

// fakeTask fails until failures runs out.
type fakeTask struct {
	Task
	mu       sync.Mutex
	failures int
	runs     int
	done     chan struct{}
}

func newFakeTask(failures int) *fakeTask {
	return &fakeTask{
		Task:     NewTask(TaskTypeImportSource, "fake"),
		failures: failures,
		done:     make(chan struct{}, 10),
	}
}

func (t *fakeTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs++
	t.done <- struct{}{}
	if t.runs <= t.failures {
		return errors.New("transient failure")
	}
	return nil
}

func (t *fakeTask) Runs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}
