package converge

import (
	"context"
	"sync"

	"jobextract/internal/domain"
)

// Merge fans records from every source into one channel. Each source is
// forwarded by its own goroutine, so records from one source keep their
// relative order; no order is imposed across sources. The output is closed
// once all sources are drained or ctx is done.
func Merge(ctx context.Context, sources ...<-chan domain.Record) <-chan domain.Record {
	out := make(chan domain.Record)
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(src <-chan domain.Record) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case rec, ok := <-src:
					if !ok {
						return
					}
					select {
					case out <- rec:
					case <-ctx.Done():
						return
					}
				}
			}
		}(src)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Union is the batch form of Merge: text records followed by JSON records,
// each in its original order.
func Union(text, json []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(text)+len(json))
	out = append(out, text...)
	return append(out, json...)
}

// Stream emits records on a channel that is closed when they are all sent
// or ctx is done.
func Stream(ctx context.Context, records []domain.Record) <-chan domain.Record {
	out := make(chan domain.Record)
	go func() {
		defer close(out)
		for _, rec := range records {
			select {
			case out <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Collect drains ch into a slice.
func Collect(ch <-chan domain.Record) []domain.Record {
	var out []domain.Record
	for rec := range ch {
		out = append(out, rec)
	}
	return out
}
