package domain

import "net/url"

// RequestKind discriminates the interactions the dispatcher handles.
type RequestKind string

const (
	RequestLoad         RequestKind = "load"
	RequestUpdate       RequestKind = "update"
	RequestAction       RequestKind = "action"
	RequestEvent        RequestKind = "event"
	RequestFormSubmit   RequestKind = "form"
	RequestGroupToggle  RequestKind = "toggle"
	RequestTabSwitch    RequestKind = "tab"
	RequestThemeSwitch  RequestKind = "theme"
	RequestToastDismiss RequestKind = "toast_dismiss"
	RequestSubmit       RequestKind = "submit"
)

// Event names carried by RequestEvent in the "_event" parameter.
const (
	EventChange = "change"
	EventBlur   = "blur"
)

// Request describes one interaction. It exists only for the duration of dispatch.
type Request struct {
	Kind RequestKind

	// Target is the button id, bound key, form name, toast id or theme name,
	// depending on Kind.
	Target string

	// Params holds the raw, untyped request parameters.
	Params url.Values
}

// Mutating reports whether the request may change state.
func (r Request) Mutating() bool {
	return r.Kind != RequestLoad
}
