/*
Package arbor serves declarative, server-rendered reactive UIs.

An app is a Go function that declares a tree of components against the
current State. On every interaction the server re-evaluates that function,
so the tree always reflects the State, and sends the rebuilt fragment to a
small client runtime that splices it into the page.

# Concept

The State is the only thing that survives between requests. Components
are rebuilt from scratch each time: callbacks are found again by walking the
fresh tree, button ids are derived from label and position, and bound
inputs write their defaults into the State the first time they are seen.

Every request goes through the same steps: rebuild, merge the submitted
values, run the matching callback, rebuild again, render. A callback that
fails or panics leaves the State exactly as it was and the client receives a
diagnostic in place of the fragment.

# Usage

	package main

	import (
		"context"
		"log"
		"net/http"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/domain"
		"github.com/aretw0/arbor/pkg/dsl"
	)

	func main() {
		app, err := arbor.New(func(ui *dsl.UI) {
			ui.Field("name", dsl.Label("Your name"))
			ui.Button("Greet", func(ctx context.Context, s domain.State) error {
				s["greeted"] = true
				return nil
			})
			if s := ui.State(); s.Bool("greeted") {
				ui.Text("Hello " + s.String("name"))
			}
		})
		if err != nil {
			log.Fatal(err)
		}
		log.Fatal(http.ListenAndServe(":8080", app.Handler()))
	}

Further apps can be mounted next to the root one with App.Mount; each is
served under /apps/{id} with its own State.

# Headless runs

An app built with Headless renders a finish control. Submitting it hands the
values of every input to a waiting RunAgent call, which makes a form usable
as a step of a larger program or an agent tool (see pkg/adapters/mcp).
*/
package arbor
