package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	// Restaurant
	&Restaurant{},
	&Branch{},
	&BranchStaff{},
	&Customer{},
	// Menu
	&MenuCategory{},
	&MenuItem{},
	&Recipe{},
	&RecipeIngredient{},
	// Inventory
	&Supplier{},
	&InventoryItem{},
	&InventoryTransaction{},
	&InventoryOrder{},
	// POS
	&Sale{},
	&SaleLineItem{},
	&SyncLog{},
	// Reports
	&BranchDailySales{},
	&BranchForecast{},
}
