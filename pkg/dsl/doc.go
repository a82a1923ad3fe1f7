/*
Package dsl provides the declarative builder used to describe an arbor UI.

A Block is evaluated against the current State on every rebuild. Each builder
method appends one node to the current accumulator; container methods push a
fresh accumulator, run their nested block and attach what it collected as the
node's children. The nesting is strictly lexical: a node's children are exactly
the builder calls made inside its block, in call order.

Example usage:

	block := func(ui *dsl.UI) {
		ui.Header("Welcome")
		ui.Field("name", dsl.Placeholder("Your name"))
		ui.Button("Greet", func(ctx context.Context, s domain.State) error {
			s["greeted"] = true
			return nil
		})
		ui.Form("signup", func(ui *dsl.UI) {
			ui.Field("email", dsl.Type("email"))
			ui.Checkbox("newsletter", dsl.Label("Keep me posted"))
			ui.Submit("Sign up", nil)
			ui.Cancel("Reset")
		})
	}

	tree, err := dsl.Build(domain.NewState(), block)

Misplaced calls (Submit outside Form, Tab outside Tabs, ModalFooter outside
Modal) abort the build with a *domain.StructuralError.
*/
package dsl
