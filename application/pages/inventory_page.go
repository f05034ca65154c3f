package pages

import (
	"context"
	"strconv"
	"time"

	"ui_automation/application/actions"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Inventory page selectors
const (
	MenuButtonSelector    = "#react-burger-menu-btn"
	LogoutLinkSelector    = "#logout_sidebar_link"
	CartBadgeSelector     = ".shopping_cart_badge"
	InventoryItemSelector = ".inventory_item"
)

// badgeGoneTimeout bounds the re-check that an emptied cart dropped its badge
const badgeGoneTimeout = time.Second

type InventoryPage struct {
	actions *actions.Actions

	Menu      interfaces.Element
	Logout    interfaces.Element
	CartBadge interfaces.Element
	Items     interfaces.Element
}

func NewInventoryPage(a *actions.Actions) *InventoryPage {
	return &InventoryPage{
		actions:   a,
		Menu:      a.Locate(MenuButtonSelector),
		Logout:    a.Locate(LogoutLinkSelector),
		CartBadge: a.Locate(CartBadgeSelector),
		Items:     a.Locate(InventoryItemSelector),
	}
}

// clickWhenReady waits for el to be visible and enabled, then clicks it
func (p *InventoryPage) clickWhenReady(ctx context.Context, el interfaces.Element, missing string) error {
	if err := p.actions.VerifyElementIsDisplayed(ctx, el, missing); err != nil {
		return err
	}
	if err := p.actions.VerifyElementIsEnabled(ctx, el); err != nil {
		return err
	}
	return p.actions.ClickElement(ctx, el)
}

// LogOut signs out through the side menu
func (p *InventoryPage) LogOut(ctx context.Context) error {
	if err := p.clickWhenReady(ctx, p.Menu, "menu button is not displayed"); err != nil {
		return err
	}
	return p.clickWhenReady(ctx, p.Logout, "logout link is not displayed")
}

// AddToCart adds product through its add-to-cart button
func (p *InventoryPage) AddToCart(ctx context.Context, product entities.Product) error {
	return p.clickWhenReady(ctx, p.actions.Locate(product.AddToCartSelector()), product.Name+" has no add-to-cart button")
}

func (p *InventoryPage) AddToCartBackpack(ctx context.Context) error {
	return p.AddToCart(ctx, entities.ProductBackpack)
}

func (p *InventoryPage) AddToCartBikeLight(ctx context.Context) error {
	return p.AddToCart(ctx, entities.ProductBikeLight)
}

// ItemsInCart asserts the cart badge shows n. An empty cart has no badge.
func (p *InventoryPage) ItemsInCart(ctx context.Context, n int) error {
	if n == 0 {
		if !p.actions.WaitForSelectorToCompletelyDisappear(ctx, p.CartBadge, badgeGoneTimeout, 0) {
			return &actions.AssertionError{Op: "ItemsInCart", Message: "cart badge is still displayed for an empty cart"}
		}
		return nil
	}
	if err := p.actions.VerifyElementIsDisplayed(ctx, p.CartBadge, "cart badge is not displayed"); err != nil {
		return err
	}
	return p.actions.VerifyTextEquals(ctx, p.CartBadge, strconv.Itoa(n))
}

// VerifyItemCount asserts the inventory lists n products
func (p *InventoryPage) VerifyItemCount(ctx context.Context, n int) error {
	return p.actions.VerifyLocatorListCount(ctx, p.Items, n)
}

// VerifyTitle asserts the browser shows the store
func (p *InventoryPage) VerifyTitle(ctx context.Context) error {
	return p.actions.VerifyTitleContains(ctx, StoreTitle)
}
