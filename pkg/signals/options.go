package signals

import (
	"fmt"
	"reflect"
	"strings"
)

// ReemissionMode governs how an emit made from inside a slot of the same
// instance is merged with the emission in progress.
type ReemissionMode uint8

const (
	// ReemitImmediate processes nested emissions right away, depth first.
	ReemitImmediate ReemissionMode = iota
	// ReemitQueued defers nested emissions until the current pass ends and
	// processes them in FIFO order.
	ReemitQueued
	// ReemitLatestOnly keeps only the most recent nested emission and drops
	// the remainder of a stale pass.
	ReemitLatestOnly
)

var reemissionNames = [...]string{
	ReemitImmediate:  "immediate",
	ReemitQueued:     "queued",
	ReemitLatestOnly: "latest-only",
}

func (m ReemissionMode) String() string {
	if int(m) < len(reemissionNames) {
		return reemissionNames[m]
	}
	return fmt.Sprintf("ReemissionMode(%d)", m)
}

// ParseReemission parses "immediate", "queued" or "latest-only".
func ParseReemission(s string) (ReemissionMode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for i, name := range reemissionNames {
		if v == name {
			return ReemissionMode(i), nil
		}
	}
	return 0, fmt.Errorf(
		"invalid reemission value %q, must be one of %s",
		s, strings.Join(reemissionNames[:], ", "),
	)
}

// RecursionLimit bounds nested emissions of one instance, and the length of
// the queue under ReemitQueued.
const RecursionLimit = 300

type config struct {
	description         string
	shape               Shape
	checkNargsOnConnect bool
	checkTypesOnConnect bool
	reemission          ReemissionMode
	dispatcher          *Dispatcher
	err                 error
}

func newConfig(opts []Option) config {
	cfg := config{checkNargsOnConnect: true, dispatcher: defaultDispatcher}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.err != nil {
		panic("signals: " + cfg.err.Error())
	}
	return cfg
}

// Option configures a Signal or an unbound SignalInstance.
type Option func(*config)

func WithDescription(desc string) Option {
	return func(c *config) { c.description = desc }
}

// WithArgs declares the positional argument types the signal emits.
func WithArgs(types ...reflect.Type) Option {
	return func(c *config) {
		c.shape = Shape{Types: types}
	}
}

// WithSignature declares the emitted arguments by example: the parameter
// list of prototype, e.g. WithSignature(func(int, string) {}).
func WithSignature(prototype any) Option {
	return func(c *config) {
		shape, err := ShapeOf(prototype)
		if err != nil {
			c.err = err
			return
		}
		c.shape = shape
	}
}

func CheckNargsOnConnect(check bool) Option {
	return func(c *config) { c.checkNargsOnConnect = check }
}

func CheckTypesOnConnect(check bool) Option {
	return func(c *config) { c.checkTypesOnConnect = check }
}

func WithReemission(mode ReemissionMode) Option {
	return func(c *config) { c.reemission = mode }
}

// WithDispatcher routes thread-affine slots through d instead of the default
// dispatcher.
func WithDispatcher(d *Dispatcher) Option {
	return func(c *config) { c.dispatcher = d }
}

type connectConfig struct {
	thread     Thread
	checkNargs *bool
	checkTypes *bool
	unique     bool
	raise      bool
	tag        string
	maxArgs    int
	onRefError RefErrorPolicy
	priority   int
}

// ConnectOption configures a single connection.
type ConnectOption func(*connectConfig)

// OnThread pins the slot to t. Emissions from any other goroutine enqueue the
// call instead, to be run when t calls Drain.
func OnThread(t Thread) ConnectOption {
	return func(c *connectConfig) { c.thread = t }
}

func CheckNargs(check bool) ConnectOption {
	return func(c *connectConfig) { c.checkNargs = &check }
}

func CheckTypes(check bool) ConnectOption {
	return func(c *connectConfig) { c.checkTypes = &check }
}

// Unique skips the connection if an equal slot is already connected.
func Unique() ConnectOption {
	return func(c *connectConfig) { c.unique = true }
}

// UniqueRaise fails with ErrAlreadyConnected if an equal slot is already
// connected.
func UniqueRaise() ConnectOption {
	return func(c *connectConfig) { c.unique, c.raise = true, true }
}

// UniqueTag labels the connection; a second connection with the same tag is
// skipped.
func UniqueTag(tag string) ConnectOption {
	return func(c *connectConfig) { c.unique, c.tag = true, tag }
}

// MaxArgs caps the number of positional arguments handed to the slot.
func MaxArgs(n int) ConnectOption {
	return func(c *connectConfig) { c.maxArgs = n }
}

func OnRefError(policy RefErrorPolicy) ConnectOption {
	return func(c *connectConfig) { c.onRefError = policy }
}

// Priority orders slots; higher runs first, ties keep connection order.
func Priority(p int) ConnectOption {
	return func(c *connectConfig) { c.priority = p }
}

// Check selects the validations EmitChecked performs.
type Check uint8

const (
	CheckNargsOnEmit Check = 1 << iota
	CheckTypesOnEmit
)

// Reducer folds two argument lists into one.
type Reducer func(acc, next []any) []any

type resumeConfig struct {
	reducer    Reducer
	reduceAll  func([][]any) []any
	initial    []any
	hasInitial bool
}

// ResumeOption configures Resume and Paused.
type ResumeOption func(*resumeConfig)

// WithReducer left-folds the buffered emissions into a single one.
func WithReducer(r Reducer) ResumeOption {
	return func(c *resumeConfig) { c.reducer = r }
}

// WithInitial seeds the WithReducer fold.
func WithInitial(args ...any) ResumeOption {
	return func(c *resumeConfig) { c.initial, c.hasInitial = args, true }
}

// WithReduceAll reduces every buffered emission at once; WithInitial is
// ignored.
func WithReduceAll(fn func(buffered [][]any) []any) ResumeOption {
	return func(c *resumeConfig) { c.reduceAll = fn }
}
