package models

// Car order statuses.
const (
	OrderPending   = "pending"
	OrderAssigned  = "assigned"
	OrderInTransit = "in-transit"
	OrderDelivered = "delivered"
)

// CarOrder records that an industry needs a car of a given AAR type in a
// given session. Orders are created by demand generation or by hand and
// are terminal at delivered.
type CarOrder struct {
	ID                 string   `json:"id,omitempty"`
	IndustryID         string   `json:"industryId"`
	AarTypeID          string   `json:"aarTypeId"`
	GoodsID            string   `json:"goodsId,omitempty"`
	Direction          string   `json:"direction,omitempty"`
	CompatibleCarTypes []string `json:"compatibleCarTypes"`
	SessionNumber      int      `json:"sessionNumber"`
	Status             string   `json:"status"`
	AssignedCarID      *string  `json:"assignedCarId"`
	AssignedTrainID    *string  `json:"assignedTrainId"`
	CreatedAt          string   `json:"createdAt"`
	UpdatedAt          string   `json:"updatedAt,omitempty"`
}
