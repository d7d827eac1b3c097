package storage

import (
	"context"
	"fmt"
	"time"

	"salesetl/internal/logging"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// rows aligned to columns and return the number of rows reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn for each non-empty batch. It returns the total number of rows
// reported by copyFn and the first error encountered.
//
// Cancellation returns (total, ctx.Err()). Progress is logged at debug level
// on each successful flush.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total       int64
		batches     int64
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			logging.Error().Err(err).Int64("inserted", n).Int64("total", total).Msg("loader: copy failed")
			return err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(total-lastTotal) / sinceLast.Seconds()
		}
		logging.Debug().
			Int64("batch", batches).
			Float64("rps", rps).
			Int64("inserted", n).
			Int64("total_inserted", total).
			Dur("elapsed", now.Sub(start)).
			Msg("loader: batch flushed")
		lastFlushTS = now
		lastTotal = total
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// Rows streams the rows of t into the returned channel until all rows are
// sent or ctx is done. The channel is closed when the producer stops.
func Rows(ctx context.Context, t RowSource) <-chan []any {
	out := make(chan []any, 64)
	go func() {
		defer close(out)
		for i := 0; i < t.NumRows(); i++ {
			select {
			case out <- t.Row(i):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// RowSource is anything that can hand out rows by index, such as a
// *table.Table.
type RowSource interface {
	NumRows() int
	Row(i int) []any
}
