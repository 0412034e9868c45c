package dynamo

import (
	"context"
	"fmt"
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bremer-sv/camp-registration/camps"
	"github.com/bremer-sv/camp-registration/ptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCamp(t *testing.T) {
	ctx := context.Background()

	t.Run("successfully create a camp", func(t *testing.T) {
		resetTable(ctx)
		camp := camps.Camp{
			Name:      "Herbstcamp 2026",
			BasePrice: money.New(12000, money.EUR),
			Capacity:  ptr.Int(40),
			ImageRef:  ptr.String("herbstcamp.jpg"),
		}

		require.NoError(t, db.CreateCamp(ctx, camp))
	})

	t.Run("fail to create a camp that already exists", func(t *testing.T) {
		resetTable(ctx)
		camp := camps.Camp{
			Name:      "Herbstcamp 2026",
			BasePrice: money.New(12000, money.EUR),
		}

		require.NoError(t, db.CreateCamp(ctx, camp))

		campErr := db.CreateCamp(ctx, camp)
		require.Error(t, campErr)
		var campError *camps.Error
		require.ErrorAs(t, campErr, &campError)
		assert.Equal(t, camps.REASON_CAMP_ALREADY_EXISTS, campError.Reason)
	})

	t.Run("price is stored as the localized string", func(t *testing.T) {
		resetTable(ctx)
		camp := camps.Camp{
			Name:      "Sommercamp 2026",
			BasePrice: money.New(114000, money.EUR),
			Capacity:  ptr.Int(60),
		}

		require.NoError(t, db.CreateCamp(ctx, camp))

		key, err := attributevalue.MarshalMap(map[string]any{
			"PK": campPK(camp.Name),
			"SK": campSK(camp.Name),
		})
		require.NoError(t, err)

		out, err := dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(tableName),
			Key:       key,
		})
		require.NoError(t, err)

		var saved campDynamo
		require.NoError(t, attributevalue.UnmarshalMap(out.Item, &saved))

		assert.Equal(t, "1.140,00€", saved.PriceRaw)
		assert.Equal(t, camp.Name, saved.Name)
		assert.Equal(t, camp.Capacity, saved.Capacity)
	})
}

func TestGetCamp(t *testing.T) {
	ctx := context.Background()

	t.Run("successfully get a camp", func(t *testing.T) {
		resetTable(ctx)
		camp := camps.Camp{
			Name:      "Ostercamp 2026",
			BasePrice: money.New(13500, money.EUR),
			Capacity:  ptr.Int(30),
			ImageRef:  ptr.String("https://drive.google.com/file/d/abc123/view"),
		}
		require.NoError(t, db.CreateCamp(ctx, camp))

		actual, err := db.GetCamp(ctx, camp.Name)
		require.NoError(t, err)

		assert.Equal(t, camp.Name, actual.Name)
		require.NotNil(t, actual.BasePrice)
		assert.Equal(t, int64(13500), actual.BasePrice.Amount())
		assert.Equal(t, money.EUR, actual.BasePrice.Currency().Code)
		assert.Equal(t, camp.Capacity, actual.Capacity)
		assert.Equal(t, camp.ImageRef, actual.ImageRef)
	})

	t.Run("fail to get a camp that does not exist", func(t *testing.T) {
		resetTable(ctx)

		_, err := db.GetCamp(ctx, "Wintercamp 2026")
		require.Error(t, err)
		var campError *camps.Error
		require.ErrorAs(t, err, &campError)
		assert.Equal(t, camps.REASON_CAMP_DOES_NOT_EXIST, campError.Reason)
	})

	t.Run("malformed stored price comes back unpriced", func(t *testing.T) {
		resetTable(ctx)

		item, err := attributevalue.MarshalMap(campDynamo{
			PK:       campPK("Kaputtes Camp"),
			SK:       campSK("Kaputtes Camp"),
			GSI1PK:   campEntityName,
			GSI1SK:   fmt.Sprintf("%s#%s", campEntityName, "Kaputtes Camp"),
			Name:     "Kaputtes Camp",
			PriceRaw: "kostenlos",
		})
		require.NoError(t, err)

		_, err = dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(tableName),
			Item:      item,
		})
		require.NoError(t, err)

		actual, err := db.GetCamp(ctx, "Kaputtes Camp")
		require.NoError(t, err)
		assert.Nil(t, actual.BasePrice)
	})

	t.Run("camp without capacity has nil capacity", func(t *testing.T) {
		resetTable(ctx)
		camp := camps.Camp{
			Name:      "Offenes Camp",
			BasePrice: money.New(9900, money.EUR),
		}
		require.NoError(t, db.CreateCamp(ctx, camp))

		actual, err := db.GetCamp(ctx, camp.Name)
		require.NoError(t, err)
		assert.Nil(t, actual.Capacity)
	})
}

func TestGetCamps(t *testing.T) {
	ctx := context.Background()

	t.Run("successfully get no camps", func(t *testing.T) {
		resetTable(ctx)
		resp, err := db.GetCamps(ctx, 10, nil)
		require.NoError(t, err)
		assert.Empty(t, resp.Data)
		assert.False(t, resp.HasNextPage)
	})

	t.Run("successfully get multiple camps", func(t *testing.T) {
		resetTable(ctx)
		for i := range 5 {
			camp := camps.Camp{
				Name:      fmt.Sprintf("Camp %d", i),
				BasePrice: money.New(int64(10000+i*500), money.EUR),
				Capacity:  ptr.Int(40 + i),
			}
			require.NoError(t, db.CreateCamp(ctx, camp))
		}

		resp, err := db.GetCamps(ctx, 10, nil)
		require.NoError(t, err)
		assert.Len(t, resp.Data, 5)
		assert.False(t, resp.HasNextPage)
	})

	t.Run("pagination", func(t *testing.T) {
		resetTable(ctx)
		for i := range 15 {
			camp := camps.Camp{
				Name:      fmt.Sprintf("Camp %02d", i),
				BasePrice: money.New(12000, money.EUR),
			}
			require.NoError(t, db.CreateCamp(ctx, camp))
		}

		// Get first page
		resp, err := db.GetCamps(ctx, 10, nil)
		require.NoError(t, err)
		assert.Len(t, resp.Data, 10)
		assert.True(t, resp.HasNextPage)

		// Get second page
		resp2, err := db.GetCamps(ctx, 10, resp.Cursor)
		require.NoError(t, err)
		assert.Len(t, resp2.Data, 5)
		assert.False(t, resp2.HasNextPage)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		resetTable(ctx)

		badCursor := "not-a-cursor"
		_, err := db.GetCamps(ctx, 10, &badCursor)
		require.Error(t, err)
		var campError *camps.Error
		require.ErrorAs(t, err, &campError)
		assert.Equal(t, camps.REASON_INVALID_CURSOR, campError.Reason)
	})
}
