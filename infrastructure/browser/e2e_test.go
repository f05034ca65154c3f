//go:build e2e

package browser_test

import (
	"context"
	"os"
	"testing"
	"time"

	"ui_automation/application/actions"
	"ui_automation/application/pages"
	"ui_automation/domain/entities"
	"ui_automation/infrastructure/browser"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func storeURL() string {
	if url := os.Getenv("UIAUTO_TESTENV"); url != "" {
		return url
	}
	return "https://www.saucedemo.com/"
}

func TestEngines_LoginAndCart(t *testing.T) {
	for _, engine := range browser.Engines {
		t.Run(engine, func(t *testing.T) {
			logger := logrus.New()
			e, err := browser.Open(browser.Options{Engine: engine, Headless: true}, logger)
			if err != nil {
				t.Skipf("%s unavailable: %v", engine, err)
			}
			defer func() { require.NoError(t, e.Close()) }()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			driver, err := e.NewSession(ctx)
			require.NoError(t, err)
			defer func() { require.NoError(t, driver.Close()) }()

			a := actions.New(driver, logger)
			login := pages.NewLoginPage(a, storeURL())
			inventory := pages.NewInventoryPage(a)

			require.NoError(t, login.SimpleLogin(ctx, entities.StandardUser.UserName, entities.StandardUser.Password))
			require.NoError(t, inventory.VerifyTitle(ctx))
			require.NoError(t, inventory.ItemsInCart(ctx, 0))
			require.NoError(t, inventory.AddToCartBackpack(ctx))
			require.NoError(t, inventory.ItemsInCart(ctx, 1))

			bikeLight := a.Locate(entities.ProductBikeLight.AddToCartSelector())
			require.NoError(t, a.HoverAndClick(ctx, bikeLight))
			require.NoError(t, inventory.ItemsInCart(ctx, 2))

			item := a.Locate(pages.InventoryItemSelector)
			require.NoError(t, a.ClickElement(ctx, item, entities.ClickOptions{Button: entities.MouseButtonRight}))
			require.NoError(t, a.ClickElement(ctx, item, entities.ClickOptions{Button: entities.MouseButtonRight, Delay: 50 * time.Millisecond}))
			require.NoError(t, a.ClickElement(ctx, item, entities.ClickOptions{ClickCount: 2}))
			require.NoError(t, inventory.ItemsInCart(ctx, 2))

			require.NoError(t, inventory.LogOut(ctx))
		})
	}
}
