package rpcproxy

import (
	"context"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// ConcurrentCall names one Proxy.Call to run as part of a ScheduleConcurrent
// batch.
type ConcurrentCall struct {
	Proxy  *Proxy
	Method string
	Target reflect.Type
	Args   []reflect.Value
}

// ScheduleConcurrent runs every call in calls concurrently via errgroup,
// returning one reflect.Value per call in the same order as calls, or the
// first error encountered (which cancels the group's shared context and
// aborts the remaining in-flight calls). Any single Proxy.Call remains
// single-threaded and cooperative per spec §5; this only parallelizes a
// caller's own batch of otherwise-independent calls, potentially against
// several different proxies at once.
func ScheduleConcurrent(ctx context.Context, calls []ConcurrentCall) ([]reflect.Value, error) {
	results := make([]reflect.Value, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range calls {
		i, c := i, c
		g.Go(func() error {
			v, err := c.Proxy.Call(gctx, c.Method, c.Target, c.Args...)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
