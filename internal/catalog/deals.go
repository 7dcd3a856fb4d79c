package catalog

// bundledDeals mirrors the storefront's static deal list so browsing and
// add-to-cart keep working offline.
var bundledDeals = []Deal{
	{
		ID:            1,
		Image:         "https://images.unsplash.com/photo-1441986300917-64674bd600d8?w=400&h=400&fit=crop",
		Discount:      "50%",
		Title:         "Premium Fashion Collection",
		OriginalPrice: "$199.99",
		SalePrice:     "$99.99",
		Description:   "Discover our premium fashion collection with high-quality materials and modern designs.",
		Rating:        4.8,
		Reviews:       124,
		Category:      "Fashion",
		Brand:         "StyleCo",
		InStock:       true,
		Colors:        []string{"#000000", "#FFFFFF", "#FF0000", "#0000FF"},
		Sizes:         []string{"XS", "S", "M", "L", "XL"},
	},
	{
		ID:            2,
		Image:         "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=400&h=400&fit=crop",
		Discount:      "75%",
		Title:         "Designer Handbag",
		OriginalPrice: "$399.99",
		SalePrice:     "$99.99",
		Description:   "Elegant designer handbag crafted from genuine leather.",
		Rating:        4.9,
		Reviews:       89,
		Category:      "Accessories",
		Brand:         "LuxeBag",
		InStock:       true,
		Colors:        []string{"#8B4513", "#000000", "#FF69B4"},
	},
	{
		ID:            3,
		Image:         "https://images.unsplash.com/photo-1494976688153-c91c4d0c8b23?w=400&h=400&fit=crop",
		Discount:      "80%",
		Title:         "Luxury Car Experience",
		OriginalPrice: "$2,999.99",
		SalePrice:     "$599.99",
		Description:   "Experience luxury with our premium car rental service.",
		Rating:        4.7,
		Reviews:       56,
		Category:      "Experiences",
		InStock:       true,
	},
}
