package orders

import (
	"strings"
	"time"

	"github.com/ogsoda/delivery-backend/pkg/db/models"
	"github.com/ogsoda/delivery-backend/pkg/types"
)

// OrderDTO is the transport shape shared by orders and order drafts.
type OrderDTO struct {
	OrderID         int64     `json:"order_id"`
	CustomerID      *int64    `json:"customer_id"`
	TraysHolding    int64     `json:"trays_holding"`
	TraysReturned   int64     `json:"trays_returned"`
	BottlesHolding  int64     `json:"bottles_holding"`
	BottlesReturned int64     `json:"bottles_returned"`
	BottlesDamaged  int64     `json:"bottles_damaged"`
	PaymentStatus   *string   `json:"payment_status"`
	DeliveredBy     *int64    `json:"delivered_by"`
	ReviewStatus    *string   `json:"review_status"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateOrderRequest is the body of POST /orders and POST /order-temp.
type CreateOrderRequest struct {
	CustomerID      *int64  `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	TraysHolding    int64   `json:"trays_holding" validate:"min=0"`
	TraysReturned   int64   `json:"trays_returned" validate:"min=0"`
	BottlesHolding  int64   `json:"bottles_holding" validate:"min=0"`
	BottlesReturned int64   `json:"bottles_returned" validate:"min=0"`
	BottlesDamaged  int64   `json:"bottles_damaged" validate:"min=0"`
	PaymentStatus   *string `json:"payment_status,omitempty" validate:"omitempty,max=50"`
	DeliveredBy     *int64  `json:"delivered_by,omitempty" validate:"omitempty,gt=0"`
	ReviewStatus    *string `json:"review_status,omitempty" validate:"omitempty,max=50"`
}

// UpdateOrderRequest is the body of PUT /orders/{id}. Absent fields are
// left untouched; nullable references can be cleared with null.
type UpdateOrderRequest struct {
	CustomerID      types.Nullable[int64]  `json:"customer_id"`
	TraysHolding    *int64                 `json:"trays_holding,omitempty" validate:"omitempty,min=0"`
	TraysReturned   *int64                 `json:"trays_returned,omitempty" validate:"omitempty,min=0"`
	BottlesHolding  *int64                 `json:"bottles_holding,omitempty" validate:"omitempty,min=0"`
	BottlesReturned *int64                 `json:"bottles_returned,omitempty" validate:"omitempty,min=0"`
	BottlesDamaged  *int64                 `json:"bottles_damaged,omitempty" validate:"omitempty,min=0"`
	PaymentStatus   types.Nullable[string] `json:"payment_status"`
	DeliveredBy     types.Nullable[int64]  `json:"delivered_by"`
	ReviewStatus    types.Nullable[string] `json:"review_status"`
}

// AgentSummary is the delivery total for one agent.
type AgentSummary struct {
	TotalOrders           int64 `json:"total_orders"`
	TotalTraysOutside     int64 `json:"total_trays_outside"`
	TotalTraysReceived    int64 `json:"total_trays_received"`
	TotalBottlesDelivered int64 `json:"total_bottles_delivered"`
	TotalBottlesReturned  int64 `json:"total_bottles_returned"`
	TotalBottlesDamaged   int64 `json:"total_bottles_damaged"`
}

// DailySummary is the delivery total for one calendar day.
type DailySummary struct {
	TotalOrders         int64 `json:"total_orders"`
	TotalTraysOutside   int64 `json:"total_trays_outside"`
	TraysReceivedBack   int64 `json:"trays_received_back"`
	TotalBottlesOutside int64 `json:"total_bottles_outside"`
	BottlesReturned     int64 `json:"bottles_returned"`
	BottlesDamaged      int64 `json:"bottles_damaged"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	return &OrderDTO{
		OrderID:         o.OrderID,
		CustomerID:      o.CustomerID,
		TraysHolding:    o.TraysHolding,
		TraysReturned:   o.TraysReturned,
		BottlesHolding:  o.BottlesHolding,
		BottlesReturned: o.BottlesReturned,
		BottlesDamaged:  o.BottlesDamaged,
		PaymentStatus:   o.PaymentStatus,
		DeliveredBy:     o.DeliveredBy,
		ReviewStatus:    o.ReviewStatus,
		CreatedAt:       o.CreatedAt,
	}
}

func FromModels(list []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

func (r CreateOrderRequest) ToModel() *models.Order {
	return &models.Order{
		CustomerID:      r.CustomerID,
		TraysHolding:    r.TraysHolding,
		TraysReturned:   r.TraysReturned,
		BottlesHolding:  r.BottlesHolding,
		BottlesReturned: r.BottlesReturned,
		BottlesDamaged:  r.BottlesDamaged,
		PaymentStatus:   trimOptional(r.PaymentStatus),
		DeliveredBy:     r.DeliveredBy,
		ReviewStatus:    trimOptional(r.ReviewStatus),
	}
}

// Updates converts the request into a column map for a partial update.
func (r UpdateOrderRequest) Updates() map[string]any {
	updates := map[string]any{}
	if r.CustomerID.Valid {
		updates["customer_id"] = r.CustomerID.Value
	}
	counters := map[string]*int64{
		"trays_holding":    r.TraysHolding,
		"trays_returned":   r.TraysReturned,
		"bottles_holding":  r.BottlesHolding,
		"bottles_returned": r.BottlesReturned,
		"bottles_damaged":  r.BottlesDamaged,
	}
	for column, value := range counters {
		if value != nil {
			updates[column] = *value
		}
	}
	if r.PaymentStatus.Valid {
		updates["payment_status"] = trimOptional(r.PaymentStatus.Value)
	}
	if r.DeliveredBy.Valid {
		updates["delivered_by"] = r.DeliveredBy.Value
	}
	if r.ReviewStatus.Valid {
		updates["review_status"] = trimOptional(r.ReviewStatus.Value)
	}
	return updates
}

func (t *Totals) agentSummary() *AgentSummary {
	return &AgentSummary{
		TotalOrders:           t.OrderCount,
		TotalTraysOutside:     t.TraysHolding,
		TotalTraysReceived:    t.TraysReturned,
		TotalBottlesDelivered: t.BottlesHolding,
		TotalBottlesReturned:  t.BottlesReturned,
		TotalBottlesDamaged:   t.BottlesDamaged,
	}
}

func (t *Totals) dailySummary() *DailySummary {
	return &DailySummary{
		TotalOrders:         t.OrderCount,
		TotalTraysOutside:   t.TraysHolding,
		TraysReceivedBack:   t.TraysReturned,
		TotalBottlesOutside: t.BottlesHolding,
		BottlesReturned:     t.BottlesReturned,
		BottlesDamaged:      t.BottlesDamaged,
	}
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
