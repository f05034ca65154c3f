package entities

// User is a storefront account used by the login flows
type User struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// Accounts published on the demo storefront's login page.
var (
	StandardUser = User{UserName: "standard_user", Password: "secret_sauce"}
	LockedUser   = User{UserName: "locked_out_user", Password: "secret_sauce"}
)
