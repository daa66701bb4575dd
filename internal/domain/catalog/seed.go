package catalog

import "github.com/shopspring/decimal"

// SeedCategories is the category set the storefront ships with.
var SeedCategories = []string{"clothes", "cups", "spices", "dresses"}

// SeedProducts returns the built-in demo catalog.
func SeedProducts() []Product {
	return []Product{
		seed("1", "Premium Cotton T-Shirt", "29.99", "https://images.pexels.com/photos/1018911/pexels-photo-1018911.jpeg",
			"Comfortable premium cotton t-shirt perfect for everyday wear.", "clothes", 50, "4.5"),
		seed("2", "Ceramic Coffee Cup", "15.99", "https://images.pexels.com/photos/302899/pexels-photo-302899.jpeg",
			"Beautiful ceramic coffee cup with modern design.", "cups", 30, "4.3"),
		seed("3", "Organic Spice Blend", "12.99", "https://images.pexels.com/photos/1340116/pexels-photo-1340116.jpeg",
			"Premium organic spice blend for authentic flavors.", "spices", 25, "4.7"),
		seed("4", "Elegant Summer Dress", "79.99", "https://images.pexels.com/photos/1536619/pexels-photo-1536619.jpeg",
			"Beautiful summer dress perfect for special occasions.", "dresses", 20, "4.6"),
		seed("5", "Classic Polo Shirt", "39.99", "https://images.pexels.com/photos/2294342/pexels-photo-2294342.jpeg",
			"Timeless polo shirt with comfortable fit.", "clothes", 40, "4.4"),
		seed("6", "Insulated Travel Mug", "24.99", "https://images.pexels.com/photos/6347707/pexels-photo-6347707.jpeg",
			"Keep your drinks hot or cold with this insulated travel mug.", "cups", 35, "4.5"),
	}
}

func seed(id, name, price, image, description, category string, stock int, rating string) Product {
	return Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       decimal.RequireFromString(price),
		Image:       image,
		Category:    category,
		Stock:       stock,
		Rating:      decimal.RequireFromString(rating),
		Reviews:     []Review{},
	}
}
