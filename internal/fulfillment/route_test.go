package fulfillment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pier/models"
)

func id(v int64) *int64 { return &v }

func fieldsWith(set ...Field) Fields {
	var f Fields
	for i, field := range set {
		v := id(int64(100 + i))
		switch field {
		case FieldSourceWarehouse:
			f.SourceWarehouseID = v
		case FieldSourceStore:
			f.SourceStoreID = v
		case FieldDestStore:
			f.DestStoreID = v
		case FieldDestCustomerAddress:
			f.DestCustomerAddressID = v
		}
	}
	return f
}

func without(fields []Field, drop Field) []Field {
	var out []Field
	for _, f := range fields {
		if f != drop {
			out = append(out, f)
		}
	}
	return out
}

func TestResolveAcceptsExactRequiredFields(t *testing.T) {
	t.Parallel()

	for _, modality := range models.Modalities {
		t.Run(string(modality), func(t *testing.T) {
			route, err := Resolve(modality, fieldsWith(RequiredFields(modality)...))
			require.NoError(t, err)
			assert.Equal(t, modality, route.Modality())

			_, home := route.(HomeDelivery)
			assert.Equal(t, modality.DeliversHome(), home)
		})
	}
}

func TestCheckRejectsOneMissingField(t *testing.T) {
	t.Parallel()

	for _, modality := range models.Modalities {
		for _, drop := range RequiredFields(modality) {
			t.Run(string(modality)+"/without_"+string(drop), func(t *testing.T) {
				err := Check(modality, fieldsWith(without(RequiredFields(modality), drop)...))

				var rerr *RoutingError
				require.ErrorAs(t, err, &rerr)
				assert.Equal(t, modality, rerr.Modality)
				assert.Equal(t, []Field{drop}, rerr.Missing)
				assert.Empty(t, rerr.Unexpected)
			})
		}
	}
}

func TestCheckRejectsOneExtraField(t *testing.T) {
	t.Parallel()

	for _, modality := range models.Modalities {
		required := RequiredFields(modality)
		for _, extra := range allFields {
			if contains(required, extra) {
				continue
			}
			t.Run(string(modality)+"/with_"+string(extra), func(t *testing.T) {
				err := Check(modality, fieldsWith(append(required, extra)...))

				var rerr *RoutingError
				require.ErrorAs(t, err, &rerr)
				assert.Empty(t, rerr.Missing)
				assert.Equal(t, []Field{extra}, rerr.Unexpected)
				assert.Contains(t, rerr.Error(), string(extra))
			})
		}
	}
}

func TestStoreToHomeWithoutDestinationIsRejected(t *testing.T) {
	err := Check(models.ModalityStoreToHome, Fields{SourceStoreID: id(3)})

	var rerr *RoutingError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, []Field{FieldDestCustomerAddress}, rerr.Missing)
	assert.Equal(t, "fulfillment modality store_to_home: missing dest_customer_address_id", rerr.Error())
}

func TestCheckUnknownModality(t *testing.T) {
	err := Check(models.FulfillmentModality("drone"), Fields{})
	assert.True(t, errors.Is(err, ErrUnknownModality))
}

func TestApplyClearsUnrelatedFields(t *testing.T) {
	item := models.OrderItem{
		FulfillmentModality: models.ModalityWareToHome,
		SourceWarehouseID:   id(1),
		DestStoreID:         id(9),
	}

	Apply(&item, StoreInventory{SourceStoreID: 4})

	assert.Equal(t, models.ModalityStoreInventory, item.FulfillmentModality)
	assert.Nil(t, item.SourceWarehouseID)
	assert.Nil(t, item.DestStoreID)
	assert.Nil(t, item.DestCustomerAddressID)
	require.NotNil(t, item.SourceStoreID)
	assert.Equal(t, int64(4), *item.SourceStoreID)
	assert.NoError(t, Check(item.FulfillmentModality, FieldsOf(item)))
}
