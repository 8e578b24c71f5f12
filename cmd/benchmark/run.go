package main

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/delaneyj/slotparty/pkg/signals"
	"github.com/jamiealquiza/tachymeter"
	"golang.org/x/sync/errgroup"
)

type receiver struct {
	hits *atomic.Int64
	seen int
}

func (r *receiver) OnValue(args ...any) {
	r.seen++
	r.hits.Add(1)
}

type result struct {
	scenario  scenario
	metrics   *tachymeter.Metrics
	elapsed   time.Duration
	delivered int64
}

func keepLast(_, next []any) []any { return next }

func runScenario(s scenario) (*result, error) {
	mode, err := s.reemission()
	if err != nil {
		return nil, err
	}
	types := make([]reflect.Type, s.Args)
	for i := range types {
		types[i] = signals.TypeOf[int]()
	}
	d := signals.NewDispatcher()
	si := signals.NewInstance(s.Name,
		signals.WithArgs(types...),
		signals.WithReemission(mode),
		signals.WithDispatcher(d),
	)

	var delivered atomic.Int64
	home := signals.CurrentThread()
	receivers := make([]*receiver, 0, s.Slots)
	for i := range s.Slots {
		var opts []signals.ConnectOption
		if s.Priorities {
			opts = append(opts, signals.Priority(i))
		}
		if s.Producers > 0 {
			opts = append(opts, signals.OnThread(home))
		}

		var slot any
		switch {
		case s.Weak:
			r := &receiver{hits: &delivered}
			receivers = append(receivers, r)
			slot = signals.Method(r, (*receiver).OnValue)
		case s.Args > 0 && i%2 == 0:
			slot = func(v int) { delivered.Add(1) }
		default:
			slot = func(args ...any) { delivered.Add(1) }
		}
		if err := si.Connect(slot, opts...); err != nil {
			return nil, err
		}
	}

	budget := 0
	if s.Nested > 0 {
		err := si.Connect(func(args ...any) error {
			if budget == 0 {
				return nil
			}
			budget--
			return si.Emit(args...)
		}, signals.Priority(math.MaxInt))
		if err != nil {
			return nil, err
		}
	}

	args := make([]any, s.Args)
	for i := range args {
		args[i] = i
	}

	tach := tachymeter.New(&tachymeter.Config{Size: s.Iterations})
	start := time.Now()
	if s.Producers > 0 {
		err = runProducers(s, si, d, home, tach, args)
	} else {
		for range s.Iterations {
			budget = s.Nested
			t0 := time.Now()
			if s.Paused {
				err = si.Paused(func() {
					for range 3 {
						_ = si.Emit(args...)
					}
				}, signals.WithReducer(keepLast))
			} else {
				err = si.Emit(args...)
			}
			tach.AddTime(time.Since(t0))
			if err != nil {
				break
			}
		}
	}
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	runtime.KeepAlive(receivers)

	return &result{
		scenario:  s,
		metrics:   tach.Calc(),
		elapsed:   elapsed,
		delivered: delivered.Load(),
	}, nil
}

// runProducers emits from s.Producers goroutines while the calling goroutine,
// which owns every slot, keeps draining the dispatcher.
func runProducers(s scenario, si *signals.SignalInstance, d *signals.Dispatcher, home signals.Thread, tach *tachymeter.Tachymeter, args []any) error {
	var g errgroup.Group
	per := s.Iterations / s.Producers
	for range s.Producers {
		g.Go(func() error {
			for range per {
				t0 := time.Now()
				if err := si.Emit(args...); err != nil {
					return err
				}
				tach.AddTime(time.Since(t0))
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	for {
		select {
		case err := <-done:
			return errors.Join(err, d.Drain(home))
		default:
			if err := d.Drain(home); err != nil {
				return err
			}
			runtime.Gosched()
		}
	}
}
