// Package pipeline implements the concurrent, order-preserving
// enumerate/read/transform/write stages that rewrite one archive's tiles.
package pipeline

import (
	"bytes"
	"compress/gzip"
	"context"
	"sync"

	"go.uber.org/multierr"

	"github.com/valpere/mvtfilter/internal/errs"
	"github.com/valpere/mvtfilter/internal/filter"
	"github.com/valpere/mvtfilter/internal/pmtile"
	"github.com/valpere/mvtfilter/internal/transform"
)

const outputQueueCapacity = 1 << 16

// coordTask is one (sequence_index, tile_id) pair handed from the
// enumerator to the reader pool.
type coordTask struct {
	seq   int
	entry pmtile.TileEntry
}

// readTask is one decompressed tile ready for transformation. skip is set
// when the directory entry resolved to no tile data; it still carries its
// seq through the transform and write stages so the writer's reorder
// buffer never stalls waiting on an index that will never arrive.
type readTask struct {
	seq   int
	entry pmtile.TileEntry
	data  []byte
	skip  bool
}

// writeTask is one transformed, (re)compressed tile ready for the writer.
type writeTask struct {
	seq   int
	entry pmtile.TileEntry
	data  []byte
	skip  bool
}

// Run drives the full enumerate → read → transform → write pipeline for
// one archive, using concurrency goroutines for the read and transform
// stages and a single ordered writer.
func Run(ctx context.Context, reader *pmtile.Reader, writer *pmtile.Writer, collection *filter.Collection, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	coords := make(chan coordTask, 4096)
	reads := make(chan readTask, outputQueueCapacity)
	writes := make(chan writeTask, outputQueueCapacity)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errAgg error

	fail := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errAgg = multierr.Append(errAgg, err)
		mu.Unlock()
		cancel(err)
	}

	entries := reader.Entries()
	tileCompression := reader.Header().TileCompression

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(coords)
		for i, e := range entries {
			select {
			case <-ctx.Done():
				return
			case coords <- coordTask{seq: i, entry: e}:
			}
		}
	}()

	var readerWG sync.WaitGroup
	readerWG.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer readerWG.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task, ok := <-coords:
					if !ok {
						return
					}
					data, found, err := reader.GetTile(task.entry.ID)
					if err != nil {
						fail(err)
						return
					}
					select {
					case <-ctx.Done():
						return
					case reads <- readTask{seq: task.seq, entry: task.entry, data: data, skip: !found}:
					}
				}
			}
		}()
	}
	go func() {
		readerWG.Wait()
		close(reads)
	}()

	var transformerWG sync.WaitGroup
	transformerWG.Add(concurrency)
	opts := &transform.Options{Collection: collection}
	for i := 0; i < concurrency; i++ {
		go func() {
			defer transformerWG.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task, ok := <-reads:
					if !ok {
						return
					}
					if task.skip {
						select {
						case <-ctx.Done():
							return
						case writes <- writeTask{seq: task.seq, entry: task.entry, skip: true}:
						}
						continue
					}
					out, err := transform.Tile(uint32(task.entry.Zoom), task.entry.X, task.entry.Y, task.data, opts)
					if err != nil {
						fail(err)
						return
					}
					if tileCompression == pmtile.CompressionGzip {
						out, err = gzipTile(out)
						if err != nil {
							fail(errs.New(errs.CodeCompression, "gzip tile", err))
							return
						}
					}
					select {
					case <-ctx.Done():
						return
					case writes <- writeTask{seq: task.seq, entry: task.entry, data: out}:
					}
				}
			}
		}()
	}
	go func() {
		transformerWG.Wait()
		close(writes)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		pending := make(map[int]writeTask)
		next := 0
		for {
			select {
			case <-ctx.Done():
				return
			case task, ok := <-writes:
				if !ok {
					if len(pending) != 0 {
						fail(errs.New(errs.CodeArchive, "pipeline ended with unflushed reordered tiles", nil))
					}
					return
				}
				pending[task.seq] = task
				for {
					t, ok := pending[next]
					if !ok {
						break
					}
					delete(pending, next)
					if !t.skip {
						if err := writer.AddTile(t.entry.ID, t.data); err != nil {
							fail(err)
							return
						}
					}
					next++
				}
			}
		}
	}()

	wg.Wait()
	if errAgg != nil {
		return errAgg
	}
	if err := context.Cause(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func gzipTile(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
