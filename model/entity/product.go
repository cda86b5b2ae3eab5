package entity

type Image struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is a purchasable configuration of a product, identified by its option values.
type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Price             Money            `json:"price"`
	AvailableForSale  bool             `json:"availableForSale"`
	SelectedOptions   []SelectedOption `json:"selectedOptions"`
	Image             *Image           `json:"image,omitempty"`
	SKU               string           `json:"sku,omitempty"`
	QuantityAvailable *int             `json:"quantityAvailable,omitempty"`
}

// OptionValue returns the variant's value for an option name.
func (v Variant) OptionValue(name string) (string, bool) {
	for _, o := range v.SelectedOptions {
		if o.Name == name {
			return o.Value, true
		}
	}
	return "", false
}

// Product is the normalized catalog item. Handle is the detail page key.
type Product struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	DescriptionHTML  string    `json:"descriptionHtml"`
	Handle           string    `json:"handle"`
	Images           []Image   `json:"images"`
	Variants         []Variant `json:"variants"`
	Price            Money     `json:"price"`
	AvailableForSale bool      `json:"availableForSale"`
	ProductType      string    `json:"productType,omitempty"`
	Vendor           string    `json:"vendor,omitempty"`
	Tags             []string  `json:"tags"`
}

// FeaturedImage is the first image or nil.
func (p Product) FeaturedImage() *Image {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}

// Variant looks a variant up by id.
func (p Product) Variant(id string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

type Collection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	Image       *Image `json:"image,omitempty"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products    []Product `json:"products"`
	HasNextPage bool      `json:"hasNextPage"`
	EndCursor   string    `json:"endCursor,omitempty"`
}
