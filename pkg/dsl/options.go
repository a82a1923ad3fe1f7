package dsl

import (
	"time"

	"github.com/aretw0/arbor/pkg/domain"
)

// Option is a named node option.
// Names recognized by the node's kind are decoded into domain.Props; any other
// name is preserved verbatim in Node.Extra for the renderer.
type Option struct {
	Name  string
	Value any
}

const (
	optOnChange = "on_change"
	optOnBlur   = "on_blur"
)

// With builds an arbitrary option. Unknown names pass through to the renderer.
func With(name string, value any) Option {
	return Option{Name: name, Value: value}
}

func Label(s string) Option       { return Option{domain.OptLabel, s} }
func Placeholder(s string) Option { return Option{domain.OptPlaceholder, s} }
func Rows(n int) Option           { return Option{domain.OptRows, n} }
func Style(s string) Option       { return Option{domain.OptStyle, s} }
func Variant(s string) Option     { return Option{domain.OptVariant, s} }
func Title(s string) Option       { return Option{domain.OptTitle, s} }
func Type(s string) Option        { return Option{domain.OptType, s} }
func Level(n int) Option          { return Option{domain.OptLevel, n} }
func Disabled() Option            { return Option{domain.OptDisabled, true} }

// Default declares the value written into state the first time the key is seen.
func Default(v any) Option { return Option{domain.OptDefault, v} }

// Debounce delays client-side sync of a field.
func Debounce(d time.Duration) Option { return Option{domain.OptDebounce, d} }

// Columns names the columns of a table.
func Columns(cols ...string) Option { return Option{domain.OptColumns, cols} }

// OnChange binds a callback invoked with the new value when the key changes.
func OnChange(fn domain.EventCallback) Option { return Option{optOnChange, fn} }

// OnBlur binds a callback invoked with the current value when the field loses focus.
func OnBlur(fn domain.EventCallback) Option { return Option{optOnBlur, fn} }
