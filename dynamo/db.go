package dynamo

import (
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const (
	gsi1 = "GSI1"
)

// DB is the single-table store behind both the camp reference data and the
// per-camp registration sheets. The client is created once at startup and
// shared across all submissions.
type DB struct {
	dynamoClient *dynamodb.Client
	tableName    string
	logger       *slog.Logger
}

func NewDB(dynamoClient *dynamodb.Client, tableName string, logger *slog.Logger) *DB {
	return &DB{
		dynamoClient: dynamoClient,
		tableName:    tableName,
		logger:       logger,
	}
}

func newEntityConditional() expression.ConditionBuilder {
	return expression.Name("PK").AttributeNotExists()
}

func exprMustBuild(builder expression.Builder) expression.Expression {
	expr, err := builder.Build()
	if err != nil {
		panic("failed to build dynamo expression")
	}

	return expr
}
