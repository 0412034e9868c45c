package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bremer-sv/camp-registration/registration"
	"github.com/bremer-sv/camp-registration/slices"
	"github.com/google/uuid"
)

var _ registration.Repository = &DB{}

const (
	sheetEntityName = "SHEET"
	rowEntityName   = "ROW"
	headerSortKey   = "HEADER"
)

// sheetColumns is the header row written when a camp's sheet is first
// created, in the display order the office reads it in.
var sheetColumns = []string{
	"Vorname", "Nachname", "Alter", "Telefon", "E-Mail",
	"Allergien", "Frühbetreuung", "Anmerkung", "Zeitstempel",
}

func sheetPK(campName string) string {
	return fmt.Sprintf("%s#%s", sheetEntityName, campName)
}

func rowSK(submittedAt time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s#%s#%s", rowEntityName, submittedAt.UTC().Format(time.RFC3339Nano), id)
}

// sheetHeaderDynamo marks a camp's sheet as existing and records its column
// labels. One per camp, created lazily on the first append.
type sheetHeaderDynamo struct {
	PK        string
	SK        string
	GSI1PK    string
	GSI1SK    string
	CampName  string
	Columns   []string
	CreatedAt time.Time
}

type registrationRowDynamo struct {
	PK             string
	SK             string
	ID             uuid.UUID
	CampName       string
	FirstName      string
	LastName       string
	Age            int
	EmergencyPhone string
	Email          string
	EarlyCare      registration.EarlyCareOption
	Allergies      string
	Remark         string
	SubmittedAt    time.Time
}

func newRegistrationRowDynamo(reg registration.Registration) registrationRowDynamo {
	return registrationRowDynamo{
		PK:             sheetPK(reg.CampName),
		SK:             rowSK(reg.SubmittedAt, reg.ID),
		ID:             reg.ID,
		CampName:       reg.CampName,
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		Age:            reg.Age,
		EmergencyPhone: reg.EmergencyPhone,
		Email:          reg.Email,
		EarlyCare:      reg.EarlyCare,
		Allergies:      reg.Allergies,
		Remark:         reg.Remark,
		SubmittedAt:    reg.SubmittedAt,
	}
}

func registrationFromRowDynamo(row registrationRowDynamo) registration.Registration {
	return registration.Registration{
		ID:             row.ID,
		CampName:       row.CampName,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Age:            row.Age,
		EmergencyPhone: row.EmergencyPhone,
		Email:          row.Email,
		EarlyCare:      row.EarlyCare,
		Allergies:      row.Allergies,
		Remark:         row.Remark,
		SubmittedAt:    row.SubmittedAt,
	}
}

func (d *DB) AppendRegistration(ctx context.Context, reg registration.Registration) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := d.ensureSheet(ctx, reg.CampName); err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(newRegistrationRowDynamo(reg))
	if err != nil {
		return registration.NewFailedToTranslateToDBModelError("Failed to translate registration to dynamo model", err)
	}

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("AppendRegistration timed out")
		}
		return registration.NewFailedToWriteError("Failed PutItem call for registration row", err)
	}

	return nil
}

// ensureSheet lazily creates the per-camp sheet header on first write.
// Losing the conditional put to a concurrent writer is fine, the header
// exists either way.
func (d *DB) ensureSheet(ctx context.Context, campName string) error {
	header := sheetHeaderDynamo{
		PK:        sheetPK(campName),
		SK:        headerSortKey,
		GSI1PK:    sheetEntityName,
		GSI1SK:    fmt.Sprintf("%s#%s", sheetEntityName, campName),
		CampName:  campName,
		Columns:   sheetColumns,
		CreatedAt: time.Now().UTC(),
	}

	item, err := attributevalue.MarshalMap(header)
	if err != nil {
		return registration.NewFailedToTranslateToDBModelError("Failed to translate sheet header to dynamo model", err)
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
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("Sheet creation timed out")
		}
		return registration.NewFailedToWriteError(fmt.Sprintf("Failed to create sheet for camp %q", campName), err)
	}

	return nil
}

func (d *DB) CountRegistrations(ctx context.Context, campName string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("PK").Equal(expression.Value(sheetPK(campName))).
		And(expression.Key("SK").BeginsWith(rowEntityName + "#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	count := 0
	var startKey map[string]types.AttributeValue
	for {
		result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(d.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Select:                    types.SelectCount,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return 0, registration.NewTimeoutError("CountRegistrations timed out")
			}
			return 0, registration.NewFailedToFetchError(fmt.Sprintf("Failed to count registrations for camp %q", campName), err)
		}

		count += int(result.Count)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return count, nil
}

func (d *DB) GetAllRegistrationsForCamp(ctx context.Context, campName string, limit int32, cursor *string) (registration.GetAllRegistrationsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("PK").Equal(expression.Value(sheetPK(campName))).
		And(expression.Key("SK").BeginsWith(rowEntityName + "#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var startKey map[string]types.AttributeValue
	if cursor != nil {
		startKey, err = decodeCursor(*cursor)
		if err != nil {
			return registration.GetAllRegistrationsResponse{}, registration.NewInvalidCursorError("Invalid cursor", err)
		}
	}

	result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
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
			return registration.GetAllRegistrationsResponse{}, registration.NewTimeoutError("GetAllRegistrationsForCamp timed out")
		}
		return registration.GetAllRegistrationsResponse{}, registration.NewFailedToFetchError("Failed to fetch registrations from dynamo", err)
	}

	var dynamoItems []registrationRowDynamo
	err = attributevalue.UnmarshalListOfMaps(result.Items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo registrations: %s", err))
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

	return registration.GetAllRegistrationsResponse{
		Data: slices.Map(dynamoItems, func(v registrationRowDynamo) registration.Registration {
			return registrationFromRowDynamo(v)
		})[:min(int(limit), len(dynamoItems))],
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}

// ListSheets returns the names of all camps that have a sheet, i.e. at
// least one registration was ever written for them.
func (d *DB) ListSheets(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(sheetEntityName)).
		And(expression.Key("GSI1SK").BeginsWith(sheetEntityName))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var names []string
	var startKey map[string]types.AttributeValue
	for {
		result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
			IndexName:                 aws.String(gsi1),
			TableName:                 aws.String(d.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, registration.NewTimeoutError("ListSheets timed out")
			}
			return nil, registration.NewFailedToFetchError("Failed to list sheets from dynamo", err)
		}

		var headers []sheetHeaderDynamo
		err = attributevalue.UnmarshalListOfMaps(result.Items, &headers)
		if err != nil {
			panic(fmt.Sprintf("failed to unmarshal dynamo sheet headers: %s", err))
		}

		names = append(names, slices.Map(headers, func(h sheetHeaderDynamo) string { return h.CampName })...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return names, nil
}
