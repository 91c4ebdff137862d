package customers

import (
	"strings"
	"time"

	"github.com/ogsoda/delivery-backend/pkg/db/models"
	"github.com/ogsoda/delivery-backend/pkg/types"
)

// CustomerDTO is the transport shape of a customer.
type CustomerDTO struct {
	ID        int64     `json:"id"`
	ShopName  string    `json:"shop_name"`
	OwnerName string    `json:"owner_name"`
	Phone     string    `json:"phone"`
	Phone2    *string   `json:"phone2"`
	Address   string    `json:"address"`
	Pincode   *string   `json:"pincode"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCustomerRequest is the body of POST /customers.
type CreateCustomerRequest struct {
	ShopName  string   `json:"shop_name" validate:"required,max=255"`
	OwnerName string   `json:"owner_name" validate:"required,max=255"`
	Phone     string   `json:"phone" validate:"required,max=50"`
	Phone2    *string  `json:"phone2,omitempty" validate:"omitempty,max=50"`
	Address   string   `json:"address" validate:"required"`
	Pincode   *string  `json:"pincode,omitempty" validate:"omitempty,max=20"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// UpdateCustomerRequest is the body of PUT /customers/{id}. Only supplied
// fields change; optional columns can be cleared with an explicit null.
type UpdateCustomerRequest struct {
	ShopName  *string                 `json:"shop_name,omitempty" validate:"omitempty,min=1,max=255"`
	OwnerName *string                 `json:"owner_name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone     *string                 `json:"phone,omitempty" validate:"omitempty,min=1,max=50"`
	Address   *string                 `json:"address,omitempty" validate:"omitempty,min=1"`
	Phone2    types.Nullable[string]  `json:"phone2"`
	Pincode   types.Nullable[string]  `json:"pincode"`
	Latitude  types.Nullable[float64] `json:"latitude"`
	Longitude types.Nullable[float64] `json:"longitude"`
}

func FromModel(c *models.Customer) *CustomerDTO {
	if c == nil {
		return nil
	}
	return &CustomerDTO{
		ID:        c.ID,
		ShopName:  c.ShopName,
		OwnerName: c.OwnerName,
		Phone:     c.Phone,
		Phone2:    c.Phone2,
		Address:   c.Address,
		Pincode:   c.Pincode,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		CreatedAt: c.CreatedAt,
	}
}

func FromModels(list []models.Customer) []CustomerDTO {
	out := make([]CustomerDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

func (r CreateCustomerRequest) ToModel() *models.Customer {
	return &models.Customer{
		ShopName:  strings.TrimSpace(r.ShopName),
		OwnerName: strings.TrimSpace(r.OwnerName),
		Phone:     strings.TrimSpace(r.Phone),
		Phone2:    trimOptional(r.Phone2),
		Address:   strings.TrimSpace(r.Address),
		Pincode:   trimOptional(r.Pincode),
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

// Updates converts the request into a column map for a partial update.
func (r UpdateCustomerRequest) Updates() map[string]any {
	updates := map[string]any{}
	if r.ShopName != nil {
		updates["shop_name"] = strings.TrimSpace(*r.ShopName)
	}
	if r.OwnerName != nil {
		updates["owner_name"] = strings.TrimSpace(*r.OwnerName)
	}
	if r.Phone != nil {
		updates["phone"] = strings.TrimSpace(*r.Phone)
	}
	if r.Address != nil {
		updates["address"] = strings.TrimSpace(*r.Address)
	}
	if r.Phone2.Valid {
		updates["phone2"] = trimOptional(r.Phone2.Value)
	}
	if r.Pincode.Valid {
		updates["pincode"] = trimOptional(r.Pincode.Value)
	}
	if r.Latitude.Valid {
		updates["latitude"] = r.Latitude.Value
	}
	if r.Longitude.Valid {
		updates["longitude"] = r.Longitude.Value
	}
	return updates
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
