package order

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCustomerID = "11111111-1111-1111-1111-111111111111"

func validOrder() Order {
	return Order{
		CustomerID: validCustomerID,
		Date:       NewDate(2025, time.March, 14),
		LineItems: []LineItem{
			{ArticleID: "a-1", UnitPrice: 9.99, Quantity: 2},
		},
	}
}

func TestNormalize_Defaults(t *testing.T) {
	o := Order{
		CustomerID: validCustomerID,
		LineItems:  []LineItem{{ArticleID: "a-1", UnitPrice: 1}},
	}

	o.Normalize()

	assert.False(t, o.Date.IsZero(), "date defaults to the current day")
	assert.Equal(t, 1, o.LineItems[0].Quantity, "quantity defaults to one")
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	o := validOrder()

	o.Normalize()

	assert.Equal(t, "2025-03-14", o.Date.String())
	assert.Equal(t, 2, o.LineItems[0].Quantity)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Order)
		want   error
	}{
		{name: "valid order", mutate: func(*Order) {}, want: nil},
		{
			name:   "missing customer id",
			mutate: func(o *Order) { o.CustomerID = "" },
			want:   ErrCustomerIDRequired,
		},
		{
			name:   "customer id not a UUID",
			mutate: func(o *Order) { o.CustomerID = "12345" },
			want:   ErrCustomerIDInvalid,
		},
		{
			name:   "no line items",
			mutate: func(o *Order) { o.LineItems = nil },
			want:   ErrLineItemsRequired,
		},
		{
			name:   "missing article id",
			mutate: func(o *Order) { o.LineItems[0].ArticleID = "" },
			want:   ErrArticleIDRequired,
		},
		{
			name:   "zero unit price",
			mutate: func(o *Order) { o.LineItems[0].UnitPrice = 0 },
			want:   ErrUnitPriceInvalid,
		},
		{
			name:   "negative unit price",
			mutate: func(o *Order) { o.LineItems[0].UnitPrice = -3 },
			want:   ErrUnitPriceInvalid,
		},
		{
			name:   "zero quantity",
			mutate: func(o *Order) { o.LineItems[0].Quantity = 0 },
			want:   ErrQuantityInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			tt.mutate(&o)

			err := o.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
				assert.True(t, IsValidationError(err))
			}
		})
	}
}

func TestEqual_IdentityIsIDPlusCustomerID(t *testing.T) {
	a := validOrder()
	a.ID = "o1"

	b := a
	b.Date = NewDate(2020, time.January, 1)
	b.LineItems = []LineItem{{ArticleID: "other", UnitPrice: 1, Quantity: 9}}
	assert.True(t, a.Equal(b), "dates and line items are not part of identity")

	c := a
	c.ID = "o2"
	assert.False(t, a.Equal(c))

	d := a
	d.CustomerID = "22222222-2222-2222-2222-222222222222"
	assert.False(t, a.Equal(d))
}

func TestDate_JSONRoundTrip(t *testing.T) {
	o := validOrder()

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date":"2025-03-14"`)

	var decoded Order
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2025-03-14", decoded.Date.String())
}

func TestDate_UnmarshalNullStaysZero(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"customerId":"`+validCustomerID+`","date":null}`), &o))

	assert.True(t, o.Date.IsZero())
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(validCustomerID))
	assert.True(t, IsValidID("ABCDEF00-1234-4321-aaaa-0123456789AB"))
	assert.False(t, IsValidID("not-a-uuid"))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID(validCustomerID+"x"))
}
