package domain

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "AVAILABLE"
	ItemStatusReserved    ItemStatus = "RESERVED"
	ItemStatusBorrowed    ItemStatus = "BORROWED"
	ItemStatusMaintenance ItemStatus = "MAINTENANCE"
	ItemStatusRetired     ItemStatus = "RETIRED"
)

type ItemCondition string

const (
	ItemConditionExcellent ItemCondition = "EXCELLENT"
	ItemConditionGood      ItemCondition = "GOOD"
	ItemConditionFair      ItemCondition = "FAIR"
	ItemConditionPoor      ItemCondition = "POOR"
	ItemConditionDamaged   ItemCondition = "DAMAGED"
)

// itemTransitions is the allowed status transition table. Guards beyond the
// table (reservation checks) live in the item status service.
var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusAvailable:   {ItemStatusReserved, ItemStatusBorrowed, ItemStatusMaintenance, ItemStatusRetired},
	ItemStatusReserved:    {ItemStatusAvailable, ItemStatusBorrowed, ItemStatusMaintenance, ItemStatusRetired},
	ItemStatusBorrowed:    {ItemStatusAvailable, ItemStatusMaintenance, ItemStatusRetired},
	ItemStatusMaintenance: {ItemStatusAvailable, ItemStatusRetired},
	ItemStatusRetired:     {ItemStatusAvailable, ItemStatusMaintenance},
}

// CanTransitionItem reports whether the status table permits from -> to.
func CanTransitionItem(from, to ItemStatus) bool {
	for _, t := range itemTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s ItemStatus) bool {
	switch s {
	case ItemStatusAvailable, ItemStatusReserved, ItemStatusBorrowed, ItemStatusMaintenance, ItemStatusRetired:
		return true
	}
	return false
}

// ValidItemCondition reports whether c is a known item condition.
func ValidItemCondition(c ItemCondition) bool {
	switch c {
	case ItemConditionExcellent, ItemConditionGood, ItemConditionFair, ItemConditionPoor, ItemConditionDamaged:
		return true
	}
	return false
}

type Item struct {
	ID         int32         `json:"id"`
	Name       string        `json:"name"`
	Description string       `json:"description"`
	Status     ItemStatus    `json:"status"`
	Condition  ItemCondition `json:"condition"`
	ValueCents int32         `json:"value_cents"`
	CreatedBy  int32         `json:"created_by"`
	CreatedOn  string        `json:"created_on"`
	UpdatedOn  string        `json:"updated_on"`
}
