package posts

import (
	"context"
	"sort"
	"sync"
)

// ListPosts loads the metadata of every post and returns the summaries
// newest first. Dates are compared as plain strings. Posts sharing a date
// have no guaranteed relative order.
//
// A single failing post aborts the whole listing.
func (s *Store) ListPosts(ctx context.Context) ([]Summary, error) {
	entries, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	summaries := make([]Summary, len(entries))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	workers := min(s.concurrency, len(entries))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				e := entries[i]
				meta, _, err := s.readFile(e.id, e.name)
				if err != nil {
					setErr(err)
					continue
				}
				summaries[i] = Summary{ID: e.id, Metadata: meta}
			}
		}()
	}

feed:
	for i := range entries {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortByDate(summaries)
	return summaries, nil
}

// sortByDate orders summaries by Date descending.
func sortByDate(summaries []Summary) {
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date > summaries[j].Date
	})
}
