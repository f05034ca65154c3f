// Package pages holds the storefront page objects. Each page is built
// around the Actions of one session.
package pages

import (
	"context"

	"ui_automation/application/actions"
	"ui_automation/domain/interfaces"
)

// Login page selectors
const (
	UserNameSelector    = `[data-test="username"]`
	PasswordSelector    = `[data-test="password"]`
	LoginButtonSelector = `[data-test="login-button"]`
	LoginErrorSelector  = `[data-test="error"]`
)

// Banner texts shown by the login form
const (
	LockedOutMessage        = "Epic sadface: Sorry, this user has been locked out."
	PasswordRequiredMessage = "Epic sadface: Password is required"
	StoreTitle              = "Swag Labs"
)

type LoginPage struct {
	actions *actions.Actions
	baseURL string

	UserName interfaces.Element
	Password interfaces.Element
	Login    interfaces.Element
	Error    interfaces.Element
}

// NewLoginPage creates the login page of the store at baseURL
func NewLoginPage(a *actions.Actions, baseURL string) *LoginPage {
	return &LoginPage{
		actions:  a,
		baseURL:  baseURL,
		UserName: a.Locate(UserNameSelector),
		Password: a.Locate(PasswordSelector),
		Login:    a.Locate(LoginButtonSelector),
		Error:    a.Locate(LoginErrorSelector),
	}
}

func (p *LoginPage) OpenApplication(ctx context.Context) error {
	return p.actions.NavigateToURL(ctx, p.baseURL)
}

func (p *LoginPage) InputUser(ctx context.Context, name string) error {
	if err := p.actions.VerifyElementIsDisplayed(ctx, p.UserName, "user name field is not displayed"); err != nil {
		return err
	}
	return p.actions.EnterText(ctx, p.UserName, name)
}

func (p *LoginPage) InputPassword(ctx context.Context, password string) error {
	if err := p.actions.VerifyElementIsDisplayed(ctx, p.Password, "password field is not displayed"); err != nil {
		return err
	}
	return p.actions.EnterText(ctx, p.Password, password)
}

func (p *LoginPage) ClickLogin(ctx context.Context) error {
	return p.actions.ClickElement(ctx, p.Login)
}

// SimpleLogin opens the store and signs in
func (p *LoginPage) SimpleLogin(ctx context.Context, name, password string) error {
	if err := p.OpenApplication(ctx); err != nil {
		return err
	}
	if err := p.InputUser(ctx, name); err != nil {
		return err
	}
	if err := p.InputPassword(ctx, password); err != nil {
		return err
	}
	return p.ClickLogin(ctx)
}

// LockedUserLogin signs in with a locked account and expects the locked-out banner
func (p *LoginPage) LockedUserLogin(ctx context.Context, name, password string) error {
	if err := p.SimpleLogin(ctx, name, password); err != nil {
		return err
	}
	return p.expectError(ctx, LockedOutMessage)
}

// ClickLoginNoPassword submits the form without a password and expects the password-required banner
func (p *LoginPage) ClickLoginNoPassword(ctx context.Context) error {
	if err := p.ClickLogin(ctx); err != nil {
		return err
	}
	return p.expectError(ctx, PasswordRequiredMessage)
}

func (p *LoginPage) expectError(ctx context.Context, message string) error {
	if err := p.actions.VerifyElementIsDisplayed(ctx, p.Error, "login error banner is not displayed"); err != nil {
		return err
	}
	return p.actions.VerifyTextEquals(ctx, p.Error, message)
}

// VerifyTitle asserts the browser shows the store
func (p *LoginPage) VerifyTitle(ctx context.Context) error {
	return p.actions.VerifyTitleContains(ctx, StoreTitle)
}
