// Command arraysum adds up the integers 0..size-1 by splitting the array
// into one contiguous range per worker and summing the ranges on a pool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	tp "github.com/Andrej220/go-utils/threadpool"
	lg "github.com/Andrej220/go-utils/zlog"
)

const (
	pollInitial = time.Millisecond
	pollMax     = 50 * time.Millisecond
)

type span struct {
	start  int
	count  int
	values []int
}

func addElements(arg *tp.Argument[span]) error {
	r := arg.Payload
	var sum int64
	for i := 0; i < r.count; i++ {
		sum += int64(r.values[r.start+i])
	}
	*arg.Result.(*int64) = sum
	return nil
}

// split cuts values into n contiguous ranges; the last one takes the excess.
func split(values []int, n int) []span {
	per := len(values) / n
	ranges := make([]span, n)
	for i := range ranges {
		ranges[i] = span{start: i * per, count: per, values: values}
	}
	ranges[n-1].count = len(values) - (n-1)*per
	return ranges
}

func sumArray(ctx context.Context, workers, size int) (got, want int64, err error) {
	if workers <= 0 || size <= 0 {
		return 0, 0, fmt.Errorf("arraysum: workers and size must be positive, got %d and %d", workers, size)
	}
	logger := lg.FromContext(ctx)

	values := make([]int, size)
	for i := range values {
		values[i] = i
	}
	results := make([]int64, workers)

	metrics := &tp.AtomicMetrics{}
	p := tp.NewPool[span](tp.Options{Workers: workers, Ctx: ctx}, metrics)

	ids := make([]tp.TaskID, 0, workers)
	for i, r := range split(values, workers) {
		id, err := p.Submit(addElements, tp.NewArgument(r, tp.CallerOwned, &results[i]), tp.DefaultPriority)
		if err != nil {
			p.Stop()
			return 0, 0, fmt.Errorf("arraysum: submit range %d: %w", i, err)
		}
		ids = append(ids, id)
	}

	bo := boff.New(pollInitial, pollMax, time.Now().UnixNano())
	for !allDone(p, ids) {
		delay := bo.Next()
		logger.Info("Waiting for ranges",
			lg.Int("pending", p.PendingCount()),
			lg.Int("executing", p.ExecutingCount()),
			lg.String("sleep", delay.String()),
		)
		time.Sleep(delay)
	}
	<-p.ShutdownAsync()

	for _, r := range results {
		got += r
	}
	n := int64(size - 1)
	want = n * (n + 1) / 2

	logger.Info("Array summed",
		lg.Any("executed", metrics.Executed()),
		lg.Any("result", got),
	)
	return got, want, nil
}

func allDone[M tp.MetricsPolicy](p *tp.Pool[span, M], ids []tp.TaskID) bool {
	for _, id := range ids {
		if !p.IsDone(id) {
			return false
		}
	}
	return true
}

func main() {
	workers := flag.Int("workers", 3, "number of worker goroutines")
	size := flag.Int("size", 100, "number of array elements")
	flag.Parse()

	got, want, err := sumArray(context.Background(), *workers, *size)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	equal := "No"
	if got == want {
		equal = "Yes"
	}
	fmt.Printf("Result: %d.\n", got)
	fmt.Printf("Expected result: %d.\n", want)
	fmt.Printf("Are the results equal? %s.\n", equal)
	if got != want {
		os.Exit(1)
	}
}
