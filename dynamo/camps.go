package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bremer-sv/camp-registration/camps"
	"github.com/bremer-sv/camp-registration/slices"
)

var _ camps.Repository = &DB{}

// campDynamo is the reference-data item for one camp. The price is stored
// as the raw localized string exactly as the office enters it; parsing
// happens on read so a typo in one row never takes the whole catalogue
// down.
type campDynamo struct {
	PK       string
	SK       string
	GSI1PK   string
	GSI1SK   string
	Name     string
	PriceRaw string
	Capacity *int
	ImageRef *string
}

const (
	campEntityName = "CAMP"
)

func campPK(name string) string {
	return fmt.Sprintf("%s#%s", campEntityName, name)
}

func campSK(name string) string {
	return campPK(name)
}

func newCampDynamo(camp camps.Camp) campDynamo {
	item := campDynamo{
		PK:       campPK(camp.Name),
		SK:       campSK(camp.Name),
		GSI1PK:   campEntityName,
		GSI1SK:   fmt.Sprintf("%s#%s", campEntityName, camp.Name),
		Name:     camp.Name,
		Capacity: camp.Capacity,
		ImageRef: camp.ImageRef,
	}
	if camp.BasePrice != nil {
		item.PriceRaw = camps.FormatPrice(camp.BasePrice)
	}
	return item
}

func (d *DB) campFromDynamo(item campDynamo) camps.Camp {
	camp := camps.Camp{
		Name:     item.Name,
		Capacity: item.Capacity,
		ImageRef: item.ImageRef,
	}

	if item.PriceRaw != "" {
		price, err := camps.ParsePrice(item.PriceRaw)
		if err != nil {
			d.logger.Warn("malformed camp price, treating camp as unpriced",
				slog.String("camp", item.Name), slog.String("price", item.PriceRaw))
		} else {
			camp.BasePrice = price
		}
	}

	return camp
}

func (d *DB) GetCamp(ctx context.Context, name string) (camps.Camp, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: campPK(name)},
			"SK": &types.AttributeValueMemberS{Value: campSK(name)},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return camps.Camp{}, camps.NewTimeoutError("GetCamp timed out")
		}
		return camps.Camp{}, camps.NewFailedToFetchError(fmt.Sprintf("Failed to fetch camp %q", name), err)
	}

	if len(resp.Item) == 0 {
		return camps.Camp{}, camps.NewCampDoesNotExistError(fmt.Sprintf("Camp %q not found", name), nil)
	}

	var item campDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &item)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal camp from DB: %s", err))
	}

	return d.campFromDynamo(item), nil
}

func (d *DB) CreateCamp(ctx context.Context, camp camps.Camp) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	item, err := attributevalue.MarshalMap(newCampDynamo(camp))
	if err != nil {
		return camps.NewFailedToTranslateToDBModelError("Failed to convert Camp to campDynamo", err)
	}

	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(newEntityConditional()))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return camps.NewCampAlreadyExistsError(fmt.Sprintf("Camp %q already exists", camp.Name), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return camps.NewTimeoutError("CreateCamp timed out")
		} else {
			return camps.NewFailedToWriteError("Failed PutItem call", err)
		}
	}

	return nil
}

func (d *DB) GetCamps(ctx context.Context, limit int32, cursor *string) (camps.GetCampsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(campEntityName)).
		And(expression.Key("GSI1SK").BeginsWith(campEntityName))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var startKey map[string]types.AttributeValue
	if cursor != nil {
		startKey, err = decodeCursor(*cursor)
		if err != nil {
			return camps.GetCampsResponse{}, camps.NewInvalidCursorError("Invalid cursor", err)
		}
	}

	result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		IndexName:                 aws.String(gsi1),
		TableName:                 aws.String(d.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// Fetch 1 more than limit to check if there is another page or not
		Limit:             aws.Int32(limit + 1),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return camps.GetCampsResponse{}, camps.NewTimeoutError("GetCamps timed out")
		}
		return camps.GetCampsResponse{}, camps.NewFailedToFetchError("Failed to fetch camps from dynamo", err)
	}

	var dynamoItems []campDynamo
	err = attributevalue.UnmarshalListOfMaps(result.Items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo camps: %s", err))
	}

	hasNextPage := len(dynamoItems) > int(limit)

	var newCursor *string
	if hasNextPage && len(result.LastEvaluatedKey) > 0 {
		// Can't use LastEvalKey directly because we grabbed an extra item to check for next page
		lastItemGivenToUser := result.Items[len(result.Items)-2]
		lastItemKey := keyFromItem(result.LastEvaluatedKey, lastItemGivenToUser)
		c, err := encodeCursor(lastItemKey)
		if err != nil {
			panic(fmt.Sprintf("failed to make cursor from lastEvalKey: %s", err))
		}
		newCursor = &c
	}

	return camps.GetCampsResponse{
		Data: slices.Map(dynamoItems, func(v campDynamo) camps.Camp {
			return d.campFromDynamo(v)
		})[:min(int(limit), len(dynamoItems))],
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}
