package signals

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Unbounded marks an arity without an upper limit.
const Unbounded = -1

var (
	ctxType = reflect.TypeFor[context.Context]()
	errType = reflect.TypeFor[error]()
)

// Shape is the positional argument list a signal emits.
type Shape struct {
	Types    []reflect.Type
	Variadic bool
}

// TypeOf is shorthand for reflect.TypeFor, handy in WithArgs.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// ShapeOf captures the parameter list of a prototype function.
func ShapeOf(prototype any) (Shape, error) {
	t := reflect.TypeOf(prototype)
	if t == nil || t.Kind() != reflect.Func {
		return Shape{}, fmt.Errorf("signature prototype must be a func, got %T", prototype)
	}
	types := make([]reflect.Type, t.NumIn())
	for i := range types {
		types[i] = t.In(i)
	}
	return Shape{Types: types, Variadic: t.IsVariadic()}, nil
}

// Arity returns the minimum and maximum number of positional arguments the
// shape accepts.
func (s Shape) Arity() (min, max int) {
	n := len(s.Types)
	if s.Variadic {
		return n - 1, Unbounded
	}
	return n, n
}

func (s Shape) typeAt(i int) reflect.Type {
	return paramAt(s.Types, s.Variadic, i)
}

func (s Shape) String() string {
	return formatParams(s.Types, s.Variadic)
}

func (s Shape) checkArgs(args []any, check Check) error {
	if check&CheckNargsOnEmit != 0 {
		min, max := s.Arity()
		if len(args) < min || (max != Unbounded && len(args) > max) {
			return fmt.Errorf("%w: signature %s does not accept %d args", ErrInvalidArgs, s, len(args))
		}
	}
	if check&CheckTypesOnEmit != 0 {
		for i, a := range args {
			t := s.typeAt(i)
			if t == nil {
				continue
			}
			if _, err := argValue(a, t); err != nil {
				return fmt.Errorf("%w: arg %d: %v", ErrInvalidArgs, i, err)
			}
		}
	}
	return nil
}

func paramAt(types []reflect.Type, variadic bool, i int) reflect.Type {
	n := len(types)
	switch {
	case variadic && i >= n-1:
		return types[n-1].Elem()
	case i < n:
		return types[i]
	default:
		return nil
	}
}

func formatParams(types []reflect.Type, variadic bool) string {
	parts := make([]string, len(types))
	for i, t := range types {
		if variadic && i == len(types)-1 {
			parts[i] = "..." + t.Elem().String()
			continue
		}
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// funcSig is the introspected shape of a slot function.
type funcSig struct {
	typ        reflect.Type
	passCtx    bool
	params     []reflect.Type
	variadic   bool
	returnsErr bool
}

var sigCache sync.Map

func inspectFunc(t reflect.Type) *funcSig {
	if v, ok := sigCache.Load(t); ok {
		return v.(*funcSig)
	}
	sig := &funcSig{typ: t, variadic: t.IsVariadic()}
	start := 0
	if t.NumIn() > 0 && t.In(0) == ctxType {
		sig.passCtx = true
		start = 1
	}
	for i := start; i < t.NumIn(); i++ {
		sig.params = append(sig.params, t.In(i))
	}
	if n := t.NumOut(); n > 0 && t.Out(n-1) == errType {
		sig.returnsErr = true
	}
	v, _ := sigCache.LoadOrStore(t, sig)
	return v.(*funcSig)
}

func (f *funcSig) arity() (min, max int) {
	n := len(f.params)
	if f.variadic {
		return n - 1, Unbounded
	}
	return n, n
}

func (f *funcSig) paramAt(i int) reflect.Type {
	return paramAt(f.params, f.variadic, i)
}

func (f *funcSig) String() string {
	return f.typ.String()
}

// checkCompatibility validates a callback against a shape and returns the
// maximum number of positional arguments to hand it at emission time.
func checkCompatibility(cb *WeakCallback, shape Shape, checkNargs, checkTypes bool) (int, error) {
	sig := cb.sig
	if sig == nil {
		return Unbounded, nil
	}
	minArgs, maxArgs := sig.arity()
	shapeMin, _ := shape.Arity()
	fail := func(reason string) error {
		return &ConnectionError{
			Slot:      cb.String(),
			Signature: sig.String(),
			Accepted:  shape.String(),
			Reason:    reason,
		}
	}
	if checkNargs && minArgs > shapeMin {
		return 0, fail(fmt.Sprintf(
			"slot requires at least %d positional arguments, but the signal only provides %d",
			minArgs, shapeMin,
		))
	}
	if checkTypes {
		for i := range max(len(shape.Types), len(sig.params)) {
			want, have := sig.paramAt(i), shape.typeAt(i)
			if want == nil || have == nil {
				break
			}
			if !have.AssignableTo(want) {
				return 0, fail(fmt.Sprintf(
					"slot parameter %d (%s) does not accept signal type %s",
					i, want, have,
				))
			}
		}
	}
	return maxArgs, nil
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	}
	return false
}

func argValue(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		if nilable(t) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", t)
	}
	v := reflect.ValueOf(a)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), t)
	}
	return v, nil
}
