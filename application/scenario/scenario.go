// Package scenario holds the named UI and API scenarios and the runner
// that executes them, one fresh browser session per UI scenario.
package scenario

import (
	"context"
	"sort"

	"ui_automation/application/actions"
	"ui_automation/application/pages"
	"ui_automation/application/randgen"
	"ui_automation/domain/entities"
	"ui_automation/infrastructure/apicheck"

	"github.com/sirupsen/logrus"
)

// Kind tells the runner what a scenario needs
type Kind string

const (
	KindUI  Kind = "ui"
	KindAPI Kind = "api"
)

// Env is what a scenario runs against. UI scenarios get Actions and the
// page objects, API scenarios get API.
type Env struct {
	BaseURL   string
	Actions   *actions.Actions
	Login     *pages.LoginPage
	Inventory *pages.InventoryPage
	API       *apicheck.Client
	Random    *randgen.Generator
	Logger    *logrus.Entry
}

type Scenario struct {
	Name        string
	Description string
	Kind        Kind
	Run         func(ctx context.Context, env *Env) error
}

// Registry indexes scenarios by name, keeping registration order
type Registry struct {
	order  []string
	byName map[string]Scenario
}

// NewRegistry registers scenarios; duplicate or empty names are rejected
func NewRegistry(scenarios ...Scenario) (*Registry, error) {
	r := &Registry{byName: make(map[string]Scenario, len(scenarios))}
	for _, s := range scenarios {
		if s.Name == "" || s.Run == nil {
			return nil, Error.New("scenario %q is incomplete", s.Name)
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, Error.New("scenario %q registered twice", s.Name)
		}
		r.order = append(r.order, s.Name)
		r.byName[s.Name] = s
	}
	return r, nil
}

// DefaultRegistry returns the built-in scenarios
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Get(name string) (Scenario, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// All returns every scenario in registration order
func (r *Registry) All() []Scenario {
	out := make([]Scenario, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns the sorted scenario names
func (r *Registry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Select resolves names in the given order. No names selects everything.
func (r *Registry) Select(names ...string) ([]Scenario, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	out := make([]Scenario, 0, len(names))
	for _, name := range names {
		s, ok := r.byName[name]
		if !ok {
			return nil, Error.New("unknown scenario %q", name)
		}
		out = append(out, s)
	}
	return out, nil
}

// Builtin returns the storefront scenarios
func Builtin() []Scenario {
	return []Scenario{
		{
			Name:        "basic-login",
			Description: "log in through raw actions and add two items",
			Kind:        KindUI,
			Run:         basicLogin,
		},
		{
			Name:        "login-happy-flow",
			Description: "standard user logs in and out",
			Kind:        KindUI,
			Run:         loginHappyFlow,
		},
		{
			Name:        "locked-user-login",
			Description: "locked user sees the locked-out banner",
			Kind:        KindUI,
			Run:         lockedUserLogin,
		},
		{
			Name:        "login-password-missing",
			Description: "login without password shows the password-required banner",
			Kind:        KindUI,
			Run:         loginPasswordMissing,
		},
		{
			Name:        "add-to-cart",
			Description: "add backpack and bike light, check the cart badge",
			Kind:        KindUI,
			Run:         addToCart,
		},
		{
			Name:        "add-random-item",
			Description: "add a random catalogue product to the cart",
			Kind:        KindUI,
			Run:         addRandomItem,
		},
		{
			Name:        "api-basic-auth",
			Description: "basic auth against the API with matching credentials",
			Kind:        KindAPI,
			Run:         apiBasicAuth,
		},
		{
			Name:        "api-delayed-response",
			Description: "POST a delayed response of 7 seconds",
			Kind:        KindAPI,
			Run:         apiDelayedResponse,
		},
	}
}

func basicLogin(ctx context.Context, env *Env) error {
	a := env.Actions
	user := a.Locate(pages.UserNameSelector)

	steps := []func() error{
		func() error { return a.NavigateToURL(ctx, env.BaseURL) },
		func() error { return a.ClickElement(ctx, user) },
		func() error { return a.EnterText(ctx, user, entities.StandardUser.UserName) },
		func() error { return a.EnterText(ctx, a.Locate(pages.PasswordSelector), entities.StandardUser.Password) },
		func() error { return a.ClickElement(ctx, a.Locate(pages.LoginButtonSelector)) },
		func() error { return a.ClickElement(ctx, a.Locate(entities.ProductOnesie.AddToCartSelector())) },
		func() error { return a.ClickElement(ctx, a.Locate(entities.ProductBikeLight.AddToCartSelector())) },
		func() error { return a.ClickElement(ctx, a.Locate(pages.MenuButtonSelector)) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func loginHappyFlow(ctx context.Context, env *Env) error {
	if err := env.Login.SimpleLogin(ctx, entities.StandardUser.UserName, entities.StandardUser.Password); err != nil {
		return err
	}
	if err := env.Inventory.VerifyTitle(ctx); err != nil {
		return err
	}
	return env.Inventory.LogOut(ctx)
}

func lockedUserLogin(ctx context.Context, env *Env) error {
	if err := env.Login.LockedUserLogin(ctx, entities.LockedUser.UserName, entities.LockedUser.Password); err != nil {
		return err
	}
	return env.Login.VerifyTitle(ctx)
}

func loginPasswordMissing(ctx context.Context, env *Env) error {
	if err := env.Login.OpenApplication(ctx); err != nil {
		return err
	}
	if err := env.Login.VerifyTitle(ctx); err != nil {
		return err
	}
	if err := env.Login.InputUser(ctx, entities.StandardUser.UserName); err != nil {
		return err
	}
	return env.Login.ClickLoginNoPassword(ctx)
}

func addToCart(ctx context.Context, env *Env) error {
	if err := env.Login.SimpleLogin(ctx, entities.StandardUser.UserName, entities.StandardUser.Password); err != nil {
		return err
	}
	if err := env.Inventory.VerifyTitle(ctx); err != nil {
		return err
	}
	if err := env.Inventory.AddToCartBackpack(ctx); err != nil {
		return err
	}
	if err := env.Inventory.AddToCartBikeLight(ctx); err != nil {
		return err
	}
	if err := env.Inventory.ItemsInCart(ctx, 2); err != nil {
		return err
	}
	return env.Inventory.LogOut(ctx)
}

func addRandomItem(ctx context.Context, env *Env) error {
	product := randgen.Pick(env.Random, entities.Catalogue())
	env.Logger.WithField("product", product.Name).Info("Adding random product")

	if err := env.Login.SimpleLogin(ctx, entities.StandardUser.UserName, entities.StandardUser.Password); err != nil {
		return err
	}
	if err := env.Inventory.ItemsInCart(ctx, 0); err != nil {
		return err
	}
	if err := env.Inventory.AddToCart(ctx, product); err != nil {
		return err
	}
	return env.Inventory.ItemsInCart(ctx, 1)
}

func apiBasicAuth(ctx context.Context, env *Env) error {
	_, err := env.API.BasicAuth(ctx, "user", "pass")
	return err
}

func apiDelayedResponse(ctx context.Context, env *Env) error {
	_, err := env.API.DelayedResponse(ctx, 7)
	return err
}
