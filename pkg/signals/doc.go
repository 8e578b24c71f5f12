// Package signals implements synchronous, in-process signals with slots
// that are called in priority order on every emission.
//
// A SignalInstance holds the connected slots and emits to them. Slots are
// plain functions, weak references built with Method, SetField or SetItem,
// or Invoker values. A slot may take fewer arguments than the signal emits,
// may take a leading context.Context and may return an error, which stops
// the emission.
//
// Signals that belong to an object are declared once per owner type with
// New, and the owner embeds Instances to hold its own instances:
//
//	type Document struct {
//		signals.Instances
//		Title string
//	}
//
//	var TitleChanged = signals.New[Document]("title_changed",
//		signals.WithSignature(func(newTitle, oldTitle string) {}),
//	)
//
// Listeners connect to the owner's instance:
//
//	docs.TitleChanged.Instance(doc).Connect(func(title string) {
//		...
//	})
//
// and the owner emits through it:
//
//	TitleChanged.Instance(d).Emit(title, old)
//
// A slot connected with OnThread only runs on that goroutine. Emissions from
// other goroutines are queued on a Dispatcher until the goroutine calls
// Drain. A Group relays the emissions of several instances as EmissionInfo
// values.
package signals
