/*
Package domain contains the core models of the arbor UI engine.

It defines the component tree produced by every rebuild, the State map that is
the only thing persisted between requests, and the requests the dispatcher
handles. This package is kept free of I/O and persistence concerns.

# Key Entities

  - Node: one component (field, button, container, modal...) with typed Props,
    opaque Extra options, callbacks and ordered children.
  - Tree: the roots of one rebuild, with recursive lookups (FindButton,
    FindBound, FindForm) used to recover callbacks.
  - State: the key-value map holding all UI state of a session or app instance.
  - Request: one interaction (update, action, event, form submit, ...).
*/
package domain
