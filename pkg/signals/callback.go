package signals

import (
	"context"
	"encoding/binary"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"unsafe"
	"weak"

	"github.com/cespare/xxhash/v2"
)

// RefErrorPolicy decides what Connect does with a slot that cannot be held
// weakly, i.e. a Go method value such as obj.OnChange.
type RefErrorPolicy uint8

const (
	// RefErrorWarn keeps a strong reference and logs a warning.
	RefErrorWarn RefErrorPolicy = iota
	// RefErrorRaise makes Connect fail with a *WeakReferenceError.
	RefErrorRaise
	// RefErrorIgnore keeps a strong reference silently.
	RefErrorIgnore
)

// Invoker is implemented by callables without an introspectable signature.
// They are considered compatible with every signal and receive all emitted
// arguments.
type Invoker interface {
	Invoke(args ...any) error
}

// ItemSetter is the target of SetItem for non-map owners.
type ItemSetter interface {
	SetItem(key, value any)
}

type callbackKind uint8

const (
	kindStrong callbackKind = iota
	kindMethod
	kindSetField
	kindSetItem
	kindInvoker
)

// WeakCallback is a reference to a slot that does not keep the slot's owner
// alive. Plain functions are held strongly; Method, SetField and SetItem hold
// their owner through a weak pointer and report the slot dead once the owner
// has been collected.
type WeakCallback struct {
	kind callbackKind
	name string
	key  uint64

	fnID  uintptr
	recv  uintptr // receiver bound by a method value
	owner any     // weak.Pointer[T], comparable
	extra any // field name or item key

	fn      reflect.Value
	sig     *funcSig
	resolve func() (reflect.Value, bool)
	invoker Invoker
	set     func(recv reflect.Value, v any) error

	err error
}

// funcID is the address of the closure a func value points at. Two func
// values are identical when they share it.
func funcID(fn any) uintptr {
	return uintptr((*[2]unsafe.Pointer)(unsafe.Pointer(&fn))[1])
}

// methodValueID returns the code pointer and the bound receiver of a method
// value on a pointer receiver. Every evaluation of obj.M allocates a new
// closure, but these two words are the same for each of them.
func methodValueID(fn any) (pc, recv uintptr) {
	closure := (*[2]uintptr)((*[2]unsafe.Pointer)(unsafe.Pointer(&fn))[1])
	return closure[0], closure[1]
}

func funcName(v reflect.Value) string {
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return v.Type().String()
	}
	return f.Name()
}

func shortName(name string) string {
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func (c *WeakCallback) hash(ownerAddr uintptr) {
	buf := make([]byte, 0, 32)
	buf = append(buf, byte(c.kind))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(c.fnID))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(ownerAddr))
	if c.extra != nil {
		buf = fmt.Appendf(buf, "%T:%v", c.extra, c.extra)
	}
	c.key = xxhash.Sum64(buf)
}

func newWeakCallback(slot any, policy RefErrorPolicy) (*WeakCallback, error) {
	switch s := slot.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrNotCallable)
	case *WeakCallback:
		if s.err != nil {
			return nil, s.err
		}
		return s, nil
	case Invoker:
		return invokerCallback(s), nil
	}

	v := reflect.ValueOf(slot)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T", ErrNotCallable, slot)
	}
	if v.IsNil() {
		return nil, fmt.Errorf("%w: nil %s", ErrNotCallable, v.Type())
	}
	raw := funcName(v)
	cb := &WeakCallback{
		kind: kindStrong,
		name: shortName(raw),
		fn:   v,
		fnID: funcID(slot),
		sig:  inspectFunc(v.Type()),
	}
	methodValue := strings.HasSuffix(raw, "-fm")
	if methodValue && strings.Contains(raw, ".(*") {
		cb.fnID, cb.recv = methodValueID(slot)
	}
	cb.hash(cb.recv)

	if methodValue {
		switch policy {
		case RefErrorRaise:
			return nil, &WeakReferenceError{
				Slot:   cb.name,
				Reason: "method values bind their receiver strongly; use signals.Method",
			}
		case RefErrorWarn:
			logger().Warn("holding method value strongly, its receiver will not be collected",
				"slot", cb.name,
			)
		}
	}
	return cb, nil
}

func invokerCallback(inv Invoker) *WeakCallback {
	cb := &WeakCallback{
		kind:    kindInvoker,
		name:    fmt.Sprintf("%T", inv),
		invoker: inv,
	}
	var addr uintptr
	if v := reflect.ValueOf(inv); v.Kind() == reflect.Pointer {
		addr = v.Pointer()
	}
	cb.hash(addr)
	return cb
}

func weakOwner[T any](owner *T) (weak.Pointer[T], func() (reflect.Value, bool)) {
	wp := weak.Make(owner)
	return wp, func() (reflect.Value, bool) {
		p := wp.Value()
		if p == nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(p), true
	}
}

// Method references method (a method expression such as (*T).OnChange)
// bound to owner, without keeping owner alive. Two Method callbacks for the
// same owner and method expression are equal, so either can be used to
// disconnect the other.
func Method[T any](owner *T, method any) *WeakCallback {
	cb := &WeakCallback{kind: kindMethod}
	v := reflect.ValueOf(method)
	recv := reflect.TypeFor[*T]()
	switch {
	case owner == nil:
		cb.err = fmt.Errorf("%w: nil owner", ErrNotCallable)
		return cb
	case v.Kind() != reflect.Func || v.IsNil():
		cb.err = fmt.Errorf("%w: %T is not a method expression", ErrNotCallable, method)
		return cb
	case v.Type().NumIn() == 0 || v.Type().In(0) != recv:
		cb.err = fmt.Errorf("%w: %s does not take %s as its receiver", ErrNotCallable, v.Type(), recv)
		return cb
	}

	t := v.Type()
	in := make([]reflect.Type, 0, t.NumIn()-1)
	for i := 1; i < t.NumIn(); i++ {
		in = append(in, t.In(i))
	}
	out := make([]reflect.Type, t.NumOut())
	for i := range out {
		out[i] = t.Out(i)
	}
	variadic := t.IsVariadic() && len(in) > 0

	cb.name = shortName(funcName(v))
	cb.fn = v
	cb.fnID = funcID(method)
	cb.sig = inspectFunc(reflect.FuncOf(in, out, variadic))
	cb.owner, cb.resolve = weakOwner(owner)
	cb.hash(uintptr(unsafe.Pointer(owner)))
	return cb
}

// SetField references the exported struct field named field on owner. When
// invoked, the first emitted argument is assigned to the field.
func SetField[T any](owner *T, field string) *WeakCallback {
	cb := &WeakCallback{kind: kindSetField, extra: field}
	t := reflect.TypeFor[T]()
	if owner == nil {
		cb.err = fmt.Errorf("%w: nil owner", ErrNotCallable)
		return cb
	}
	if t.Kind() != reflect.Struct {
		cb.err = fmt.Errorf("%w: %s is not a struct", ErrNotCallable, t)
		return cb
	}
	f, ok := t.FieldByName(field)
	if !ok || !f.IsExported() {
		cb.err = fmt.Errorf("%w: %s has no exported field %q", ErrNotCallable, t, field)
		return cb
	}

	cb.name = fmt.Sprintf("setattr(%s.%s)", t.Name(), field)
	cb.sig = inspectFunc(reflect.FuncOf([]reflect.Type{f.Type}, nil, false))
	cb.owner, cb.resolve = weakOwner(owner)
	cb.set = func(recv reflect.Value, v any) error {
		val, err := argValue(v, f.Type)
		if err != nil {
			return err
		}
		recv.Elem().FieldByIndex(f.Index).Set(val)
		return nil
	}
	cb.hash(uintptr(unsafe.Pointer(owner)))
	return cb
}

// SetItem references owner[key]. owner must point at a map or implement
// ItemSetter. When invoked, the first emitted argument is stored under key.
func SetItem[T any](owner *T, key any) *WeakCallback {
	cb := &WeakCallback{kind: kindSetItem, extra: key}
	if owner == nil {
		cb.err = fmt.Errorf("%w: nil owner", ErrNotCallable)
		return cb
	}
	if key == nil || !reflect.TypeOf(key).Comparable() {
		cb.err = fmt.Errorf("%w: item key %v is not comparable", ErrNotCallable, key)
		return cb
	}

	t := reflect.TypeFor[T]()
	var valueType reflect.Type
	switch {
	case t.Kind() == reflect.Map:
		k, err := argValue(key, t.Key())
		if err != nil {
			cb.err = fmt.Errorf("%w: %v", ErrNotCallable, err)
			return cb
		}
		valueType = t.Elem()
		cb.set = func(recv reflect.Value, v any) error {
			val, err := argValue(v, valueType)
			if err != nil {
				return err
			}
			m := recv.Elem()
			if m.IsNil() {
				return fmt.Errorf("assignment to entry in nil map %s", t)
			}
			m.SetMapIndex(k, val)
			return nil
		}
	case reflect.PointerTo(t).Implements(reflect.TypeFor[ItemSetter]()):
		valueType = reflect.TypeFor[any]()
		cb.set = func(recv reflect.Value, v any) error {
			recv.Interface().(ItemSetter).SetItem(key, v)
			return nil
		}
	default:
		cb.err = fmt.Errorf("%w: %s is neither a map nor an ItemSetter", ErrNotCallable, t)
		return cb
	}

	cb.name = fmt.Sprintf("setitem(%s[%v])", t, key)
	cb.sig = inspectFunc(reflect.FuncOf([]reflect.Type{valueType}, nil, false))
	cb.owner, cb.resolve = weakOwner(owner)
	cb.hash(uintptr(unsafe.Pointer(owner)))
	return cb
}

// IsDead reports whether the owner of a weak callback has been collected.
func (c *WeakCallback) IsDead() bool {
	if c.resolve == nil {
		return false
	}
	_, ok := c.resolve()
	return !ok
}

// Equal reports whether c and o reference the same slot.
func (c *WeakCallback) Equal(o *WeakCallback) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil || c.kind != o.kind || c.key != o.key {
		return false
	}
	if c.kind == kindInvoker {
		if !reflect.TypeOf(c.invoker).Comparable() {
			return false
		}
		return c.invoker == o.invoker
	}
	return c.fnID == o.fnID && c.recv == o.recv && c.owner == o.owner && c.extra == o.extra
}

func (c *WeakCallback) String() string {
	if c.IsDead() {
		return c.name + " (dead)"
	}
	return c.name
}

// invoke calls the slot with args. A collected owner yields alive=false and
// no error.
func (c *WeakCallback) invoke(ctx context.Context, args []any) (alive bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			alive, err = true, &panicError{value: r}
		}
	}()

	if c.kind == kindInvoker {
		return true, c.invoker.Invoke(args...)
	}

	var in []reflect.Value
	if c.resolve != nil {
		recv, ok := c.resolve()
		if !ok {
			return false, nil
		}
		if c.set != nil {
			if len(args) == 0 {
				return true, fmt.Errorf("%w: %s needs a value", ErrInvalidArgs, c.name)
			}
			return true, c.set(recv, args[0])
		}
		in = append(in, recv)
	}

	if c.sig.passCtx {
		in = append(in, reflect.ValueOf(ctx))
	}
	minArgs, _ := c.sig.arity()
	if len(args) < minArgs {
		return true, fmt.Errorf("%w: %s needs %d args, got %d", ErrInvalidArgs, c.name, minArgs, len(args))
	}
	for i, a := range args {
		t := c.sig.paramAt(i)
		if t == nil {
			break
		}
		v, err := argValue(a, t)
		if err != nil {
			return true, fmt.Errorf("%w: arg %d: %v", ErrInvalidArgs, i, err)
		}
		in = append(in, v)
	}

	out := c.fn.Call(in)
	if c.sig.returnsErr {
		if e := out[len(out)-1]; !e.IsNil() {
			return true, e.Interface().(error)
		}
	}
	return true, nil
}
