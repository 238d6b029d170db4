package models

type Category string

const (
	CategoryPainting   Category = "painting"
	CategoryPlumbing   Category = "plumbing"
	CategoryElectrical Category = "electrical"
	CategoryCleaning   Category = "cleaning"
	CategoryCarpentry  Category = "carpentry"
	CategoryACRepair   Category = "ac_repair"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryPainting,
	CategoryPlumbing,
	CategoryElectrical,
	CategoryCleaning,
	CategoryCarpentry,
	CategoryACRepair,
}

var categoryLabels = map[Category]string{
	CategoryPainting:   "Painting",
	CategoryPlumbing:   "Plumbing",
	CategoryElectrical: "Electrical",
	CategoryCleaning:   "Cleaning",
	CategoryCarpentry:  "Carpentry",
	CategoryACRepair:   "AC Repair",
}

func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	return categoryLabels[c]
}
