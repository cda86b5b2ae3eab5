package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Storefront routes are public; only /api/admin requires credentials
	return []string{
		"/api/products",
		"/api/products/:handle",
		"/api/collections",
		"/api/search",
		"/api/cart",
		"/api/cart/lines",
		"/api/cart/lines/:id",
		"/api/newsletter",
		"/api/availability",
	}
}
