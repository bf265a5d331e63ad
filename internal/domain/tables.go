package domain

var Tables = []interface{}{
	// System
	&Setting{},
	&Operator{},
	&OperatorLog{},
	// Catalog
	&Product{},
	&Category{},
	&ProductImage{},
	&GalleryImage{},
	// Commerce
	&Order{},
	&OrderItem{},
	&Customer{},
}
