package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"autoservice-agent/internal/domain"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// VehicleStore defines the record store operations consumed by the assistant.
type VehicleStore interface {
	GetVehicle(ctx context.Context, vin string) (*domain.Vehicle, error)
	CreateVehicle(ctx context.Context, v domain.Vehicle) error
}

// Client wraps a single DynamoDB table of vehicle records keyed by VIN.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// GetVehicle reads one record by VIN. A missing record returns (nil, nil).
func (c *Client) GetVehicle(ctx context.Context, vin string) (*domain.Vehicle, error) {
	if strings.TrimSpace(vin) == "" {
		return nil, errors.New("repository: GetVehicle: vin is required")
	}

	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"vin": &types.AttributeValueMemberS{Value: vin},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: GetVehicle get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}

	v, err := itemToVehicle(out.Item)
	if err != nil {
		return nil, fmt.Errorf("repository: GetVehicle unmarshal: %w", err)
	}
	return &v, nil
}

// CreateVehicle writes a record with overwrite-or-insert semantics by VIN.
func (c *Client) CreateVehicle(ctx context.Context, v domain.Vehicle) error {
	if strings.TrimSpace(v.VIN) == "" {
		return errors.New("repository: CreateVehicle: vin is required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      vehicleItem(v),
	})
	if err != nil {
		return fmt.Errorf("repository: CreateVehicle: %w", err)
	}
	return nil
}

// itemToVehicle converts a DynamoDB attribute map to a Vehicle.
func itemToVehicle(item map[string]types.AttributeValue) (domain.Vehicle, error) {
	vin, err := strAttr(item, "vin")
	if err != nil {
		return domain.Vehicle{}, err
	}
	vehicleMake, err := strAttr(item, "make")
	if err != nil {
		return domain.Vehicle{}, err
	}
	model, err := strAttr(item, "model")
	if err != nil {
		return domain.Vehicle{}, err
	}
	year, err := intAttr(item, "year")
	if err != nil {
		return domain.Vehicle{}, err
	}

	return domain.Vehicle{
		VIN:   vin,
		Make:  vehicleMake,
		Model: model,
		Year:  year,
	}, nil
}

func vehicleItem(v domain.Vehicle) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"vin":   &types.AttributeValueMemberS{Value: v.VIN},
		"make":  &types.AttributeValueMemberS{Value: v.Make},
		"model": &types.AttributeValueMemberS{Value: v.Model},
		"year":  &types.AttributeValueMemberN{Value: strconv.Itoa(v.Year)},
	}
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
