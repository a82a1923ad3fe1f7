package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
)

var demos = map[string]dsl.Block{
	"hello":     hello,
	"signup":    signup,
	"dashboard": dashboard,
}

func demo(name string) (dsl.Block, error) {
	block, ok := demos[name]
	if !ok {
		names := make([]string, 0, len(demos))
		for n := range demos {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown app %q (available: %s)", name, strings.Join(names, ", "))
	}
	return block, nil
}

func hello(ui *dsl.UI) {
	ui.Header("Hello")
	ui.Field("name", dsl.Label("Your name"), dsl.Placeholder("Ada"))
	ui.Checkbox("shout", dsl.Label("Shout"))
	ui.Button("Greet", func(ctx context.Context, s domain.State) error {
		s["greeted"] = true
		return nil
	}, dsl.Variant("primary"))

	s := ui.State()
	if s.Bool("greeted") {
		msg := "Hello " + s.String("name")
		if s.Bool("shout") {
			msg = strings.ToUpper(msg) + "!"
		}
		ui.Text(msg)
	}
}

type signupValues struct {
	Email  string   `mapstructure:"email"`
	Plan   string   `mapstructure:"plan"`
	Topics []string `mapstructure:"topics"`
	Terms  bool     `mapstructure:"terms"`
}

func signup(ui *dsl.UI) {
	ui.Header("Sign up")
	ui.Form("signup", func(ui *dsl.UI) {
		ui.Field("email", dsl.Label("Email"), dsl.Type("email"))
		ui.Radio("plan", []string{"free", "pro"}, dsl.Label("Plan"))
		ui.CheckboxGroup("topics", []string{"releases", "security", "events"}, dsl.Label("Topics"))
		ui.Checkbox("terms", dsl.Label("I accept the terms"))
		ui.Submit("Create account", func(ctx context.Context, s domain.State, values map[string]any) error {
			var v signupValues
			if err := domain.State(values).Decode(&v); err != nil {
				return err
			}
			if !v.Terms {
				domain.PushToast(s, "Please accept the terms", "warning")
				return nil
			}
			if !strings.Contains(v.Email, "@") {
				return errors.New("email address is not valid")
			}
			s["account"] = v.Email
			s["done"] = true
			domain.PushToast(s, "Welcome aboard", "success")
			return nil
		})
		ui.Cancel("Reset")
	})

	s := ui.State()
	if s.Bool("done") {
		ui.Card("Account", func(ui *dsl.UI) {
			ui.Markdown(fmt.Sprintf("Signed up as **%s**.", s.String("account")))
			ui.Button("Delete account", func(ctx context.Context, s domain.State) error {
				s["confirm"] = true
				return nil
			}, dsl.Variant("danger"))
		})
	}
	ui.Modal("confirm", "Delete the account?", func(ui *dsl.UI) {
		ui.Text("This cannot be undone.")
		ui.ModalFooter(func(ui *dsl.UI) {
			ui.Button("Delete", func(ctx context.Context, s domain.State) error {
				delete(s, "account")
				delete(s, "signup")
				s["done"] = false
				s["confirm"] = false
				return nil
			}, dsl.Variant("danger"))
			ui.Button("Keep", func(ctx context.Context, s domain.State) error {
				s["confirm"] = false
				return nil
			})
		})
	})
}

func dashboard(ui *dsl.UI) {
	ui.Header("Dashboard")
	ui.Row(func(ui *dsl.UI) {
		ui.Select("range", []string{"day", "week", "month"}, dsl.Label("Range"),
			dsl.OnChange(func(ctx context.Context, s domain.State, v any) error {
				domain.PushToast(s, fmt.Sprintf("Range set to %v", v), "info")
				return nil
			}))
		ui.Button("Dark", func(ctx context.Context, s domain.State) error {
			s[domain.KeyTheme] = "dark"
			return nil
		})
		ui.Button("Light", func(ctx context.Context, s domain.State) error {
			s[domain.KeyTheme] = "light"
			return nil
		})
	})

	points := samples(ui.State().String("range"))
	ui.Tabs("view", func(ui *dsl.UI) {
		ui.Tab("Chart", func(ui *dsl.UI) {
			ui.Chart(points)
		})
		ui.Tab("Table", func(ui *dsl.UI) {
			ui.Table(points, dsl.Columns("label", "value"))
		})
		ui.Tab("Notes", func(ui *dsl.UI) {
			ui.TextArea("notes", dsl.Rows(6), dsl.Debounce(500*time.Millisecond))
			ui.Markdown(ui.State().String("notes"))
		})
	})
}

func samples(r string) []map[string]any {
	n := 7
	switch r {
	case "week":
		n = 4
	case "month":
		n = 12
	}
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"label": fmt.Sprintf("#%d", i+1), "value": (i*7 + 3) % 11}
	}
	return out
}
