package entities

// Product is an inventory item that can be added to the cart
type Product struct {
	Name   string `json:"name"`
	TestID string `json:"test_id"` // suffix of the add-to-cart data-test attribute
	ImgID  string `json:"img_id"`
}

var (
	ProductBackpack  = Product{Name: "Sauce Labs Backpack", TestID: "sauce-labs-backpack", ImgID: "item_4_img_link"}
	ProductBikeLight = Product{Name: "Sauce Labs Bike Light", TestID: "sauce-labs-bike-light", ImgID: "item_0_img_link"}
	ProductBoltShirt = Product{Name: "Sauce Labs Bolt T-Shirt", TestID: "sauce-labs-bolt-t-shirt", ImgID: "item_1_img_link"}
	ProductJacket    = Product{Name: "Sauce Labs Fleece Jacket", TestID: "sauce-labs-fleece-jacket", ImgID: "item_5_img_link"}
	ProductOnesie    = Product{Name: "Sauce Labs Onesie", TestID: "sauce-labs-onesie", ImgID: "item_2_img_link"}
)

// Catalogue returns every known product
func Catalogue() []Product {
	return []Product{ProductBackpack, ProductBikeLight, ProductBoltShirt, ProductJacket, ProductOnesie}
}

// AddToCartSelector returns the selector of the product's add-to-cart button
func (p Product) AddToCartSelector() string {
	return `[data-test="add-to-cart-` + p.TestID + `"]`
}

// RemoveSelector returns the selector of the product's remove button
func (p Product) RemoveSelector() string {
	return `[data-test="remove-` + p.TestID + `"]`
}
