package signals

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Emit calls every connected slot with args, in priority order.
//
// A blocked signal ignores the call; a paused one buffers args for Resume.
// The first slot failure stops the pass and is returned as a
// *CallbackError.
func (s *SignalInstance) Emit(args ...any) error {
	return s.emit(context.Background(), args, 0)
}

// EmitContext is Emit with a context handed to context-aware slots.
func (s *SignalInstance) EmitContext(ctx context.Context, args ...any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.emit(ctx, args, 0)
}

// EmitChecked validates args against the signal's shape before emitting.
func (s *SignalInstance) EmitChecked(check Check, args ...any) error {
	return s.emit(context.Background(), args, check)
}

func (s *SignalInstance) emit(ctx context.Context, args []any, check Check) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blocked {
		return nil
	}
	if check != 0 {
		if err := s.shape.checkArgs(args, check); err != nil {
			return fmt.Errorf("signal %q: %w", s.name, err)
		}
	}
	if s.paused {
		s.argsQueue = append(s.argsQueue, slices.Clone(args))
		return nil
	}
	return s.runEmitLoop(ctx, args)
}

// runEmitLoop must be called with s.mu held.
func (s *SignalInstance) runEmitLoop(ctx context.Context, args []any) error {
	if s.depth >= RecursionLimit {
		return &RecursionError{Signal: s.name, Args: args, Depth: s.depth}
	}
	if s.depth > 0 {
		switch s.reemission {
		case ReemitQueued:
			s.emitQueue = append(s.emitQueue, args)
			return nil
		case ReemitLatestOnly:
			s.latest, s.hasLatest = args, true
			return nil
		}
	}

	s.depth++
	pop := pushEmitter(s)
	defer func() {
		pop()
		s.depth--
		if s.depth == 0 {
			s.emitQueue = nil
			s.latest, s.hasLatest = nil, false
		}
	}()
	ctx = withEmitter(ctx, s)

	switch s.reemission {
	case ReemitQueued:
		if err := s.runPass(ctx, args); err != nil {
			return err
		}
		for i := 0; i < len(s.emitQueue); i++ {
			if len(s.emitQueue) > RecursionLimit {
				return &RecursionError{Signal: s.name, Args: s.emitQueue[i], Depth: len(s.emitQueue)}
			}
			if err := s.runPass(ctx, s.emitQueue[i]); err != nil {
				return err
			}
		}
		return nil
	case ReemitLatestOnly:
		for {
			if err := s.runPass(ctx, args); err != nil {
				return err
			}
			if !s.hasLatest {
				return nil
			}
			args, s.latest, s.hasLatest = s.latest, nil, false
		}
	default:
		return s.runPass(ctx, args)
	}
}

// runPass delivers args once to a snapshot of the slot list.
func (s *SignalInstance) runPass(ctx context.Context, args []any) error {
	cur := CurrentThread()
	for _, sl := range slices.Clone(s.slots) {
		if s.hasLatest {
			// a newer emission is pending, the rest of this pass is stale
			return nil
		}
		callArgs := args
		if sl.maxArgs != Unbounded && len(callArgs) > sl.maxArgs {
			callArgs = callArgs[:sl.maxArgs]
		}

		if sl.thread != 0 && sl.thread != cur {
			if sl.cb.IsDead() {
				s.removeSlot(sl)
				continue
			}
			s.dispatcher.Enqueue(sl.thread, s.queuedCall(ctx, sl, callArgs))
			continue
		}

		alive, err := sl.cb.invoke(ctx, callArgs)
		if !alive {
			s.removeSlot(sl)
			continue
		}
		if err != nil {
			return s.slotError(sl, args, err)
		}
	}
	return nil
}

func (s *SignalInstance) queuedCall(ctx context.Context, sl *slot, args []any) func() error {
	args = slices.Clone(args)
	return func() error {
		alive, err := sl.cb.invoke(ctx, args)
		if !alive {
			s.mu.Lock()
			s.removeSlot(sl)
			s.mu.Unlock()
			return nil
		}
		if err != nil {
			return s.slotError(sl, args, err)
		}
		return nil
	}
}

func (s *SignalInstance) slotError(sl *slot, args []any, err error) error {
	var (
		cbErr  *CallbackError
		recErr *RecursionError
	)
	if errors.As(err, &cbErr) || errors.As(err, &recErr) {
		return err
	}
	logger().Debug("slot failed", "signal", s.name, "slot", sl.cb.String(), "err", err)
	return &CallbackError{
		Signal: s.name,
		Slot:   sl.cb.String(),
		Args:   slices.Clone(args),
		Err:    err,
	}
}
