package models

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&Company{},
		&CompanyConfiguration{},
		&Wallet{},
		&User{},
		&DynamicMenuDiscount{},
		&FoodItem{},
		&SideDish{},
		&Schedule{},
		&DailyMenu{},
		&DiscountCode{},
		&Order{},
		&DiscountCodeUsage{},
		&Transaction{},
	}
}
