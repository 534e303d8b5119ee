package s3

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// mockS3Client は関数フィールドで振る舞いを差し替えるS3API実装
type mockS3Client struct {
	mu        sync.Mutex
	headCalls int
	listCalls int
	getCalls  int

	HeadBucketFunc    func(context.Context, *s3.HeadBucketInput) (*s3.HeadBucketOutput, error)
	ListObjectsV2Func func(context.Context, *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error)
	GetObjectFunc     func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error)
}

func (m *mockS3Client) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	m.mu.Lock()
	m.headCalls++
	m.mu.Unlock()
	if m.HeadBucketFunc == nil {
		return &s3.HeadBucketOutput{}, nil
	}
	return m.HeadBucketFunc(ctx, params)
}

func (m *mockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.ListObjectsV2Func == nil {
		return &s3.ListObjectsV2Output{}, nil
	}
	return m.ListObjectsV2Func(ctx, params)
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()
	if m.GetObjectFunc == nil {
		return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(""))}, nil
	}
	return m.GetObjectFunc(ctx, params)
}

func (m *mockS3Client) calls() (head, list, get int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.headCalls, m.listCalls, m.getCalls
}

// clientsFor は全リージョンで同じモックを返す ClientFunc
func clientsFor(m *mockS3Client) ClientFunc {
	return func(string) S3API { return m }
}

// responseError はSDKがHTTPエラー応答に対して返すのと同じ形のエラーを作る
func responseError(statusCode int, header http.Header, code string) error {
	if header == nil {
		header = http.Header{}
	}
	return &smithy.OperationError{
		ServiceID:     "S3",
		OperationName: "HeadBucket",
		Err: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: statusCode, Header: header}},
				Err:      &smithy.GenericAPIError{Code: code, Message: http.StatusText(statusCode)},
			},
		},
	}
}

// pagedListing は keys を pageSize 件ずつ継続トークン付きで返す ListObjectsV2 を作る
func pagedListing(keys []string, pageSize int, size int64) func(context.Context, *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	return func(_ context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		start := 0
		if token := aws.ToString(in.ContinuationToken); token != "" {
			for i, k := range keys {
				if k == token {
					start = i
					break
				}
			}
		}
		end := min(start+pageSize, len(keys))

		out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
		for _, k := range keys[start:end] {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(size)})
		}
		if end < len(keys) {
			out.NextContinuationToken = aws.String(keys[end])
		}
		return out, nil
	}
}
