package domain

// Settings is process-wide shop configuration. The checkout path reads only
// the cashier/currency labels from it.
type Settings struct {
	ShopName      string
	AdminPassword string
	Currency      string
}

func DefaultSettings() Settings {
	return Settings{
		ShopName:      "Sampath Tire House",
		AdminPassword: "12345",
		Currency:      "LKR",
	}
}
