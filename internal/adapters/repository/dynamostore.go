package repository

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item attributes. The table's partition key is attrKey (S).
const (
	attrKey       = "SnapshotKey"
	attrDoc       = "Doc"
	attrEncoding  = "Encoding"
	attrUpdatedAt = "UpdatedAt"

	encodingGzip = "gzip"
	encodingRaw  = "raw"
)

// DynamoDBAPI is the subset of the DynamoDB client the store calls.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore keeps one item per document. Documents are gzipped by
// default to stay under the item size limit.
type DynamoStore struct {
	client   DynamoDBAPI
	table    string
	compress bool
	now      func() time.Time
}

// NewDynamoStore wraps an existing client.
func NewDynamoStore(client DynamoDBAPI, table string, opts ...DynamoOption) *DynamoStore {
	s := &DynamoStore{client: client, table: table, compress: true, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenDynamoStore builds a client from the default AWS credential chain.
func OpenDynamoStore(ctx context.Context, region, table string, opts ...DynamoOption) (*DynamoStore, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewDynamoStore(dynamodb.NewFromConfig(cfg), table, opts...), nil
}

// Put implements Store.
func (s *DynamoStore) Put(ctx context.Context, key string, doc []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	body, enc := doc, encodingRaw
	if s.compress {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(doc); err != nil {
			return fmt.Errorf("compress snapshot %s: %w", key, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compress snapshot %s: %w", key, err)
		}
		body, enc = buf.Bytes(), encodingGzip
	}
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			attrKey:       &types.AttributeValueMemberS{Value: key},
			attrDoc:       &types.AttributeValueMemberB{Value: body},
			attrEncoding:  &types.AttributeValueMemberS{Value: enc},
			attrUpdatedAt: &types.AttributeValueMemberN{Value: strconv.FormatInt(s.now().Unix(), 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("put snapshot %s: %w", key, err)
	}
	return nil
}

// Get implements Store.
func (s *DynamoStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            map[string]types.AttributeValue{attrKey: &types.AttributeValueMemberS{Value: key}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	docAttr, ok := out.Item[attrDoc].(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("snapshot %s: missing %s attribute", key, attrDoc)
	}
	if encAttr, ok := out.Item[attrEncoding].(*types.AttributeValueMemberS); ok && encAttr.Value == encodingGzip {
		zr, err := gzip.NewReader(bytes.NewReader(docAttr.Value))
		if err != nil {
			return nil, fmt.Errorf("decompress snapshot %s: %w", key, err)
		}
		defer zr.Close()
		b, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("decompress snapshot %s: %w", key, err)
		}
		return b, nil
	}
	return docAttr.Value, nil
}

// Keys scans the table, following pagination.
func (s *DynamoStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	input := &dynamodb.ScanInput{
		TableName:                aws.String(s.table),
		ProjectionExpression:     aws.String("#k"),
		ExpressionAttributeNames: map[string]string{"#k": attrKey},
	}
	if prefix != "" {
		input.FilterExpression = aws.String("begins_with(#k, :p)")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: prefix},
		}
	}

	keys := make([]string, 0)
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		for _, item := range out.Items {
			if k, ok := item[attrKey].(*types.AttributeValueMemberS); ok {
				keys = append(keys, k.Value)
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	sort.Strings(keys)
	return keys, nil
}
