package s3

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalaws "s3scanner/internal/aws"
)

func TestClassify(t *testing.T) {
	target := BucketTarget{Name: "b", Region: "us-west-1"}
	redirectHeader := http.Header{}
	redirectHeader.Set(bucketRegionHeader, "eu-west-1")

	tests := []struct {
		name       string
		status     int
		header     http.Header
		wantOK     bool
		wantKind   OutcomeKind
		wantRegion string
	}{
		{"200 found", http.StatusOK, nil, true, OutcomeFound, "us-west-1"},
		{"403 forbidden", http.StatusForbidden, nil, true, OutcomeForbidden, "us-west-1"},
		{"404 not found", http.StatusNotFound, nil, true, OutcomeNotFound, "us-west-1"},
		{"301 redirect", http.StatusMovedPermanently, redirectHeader, true, OutcomeRedirect, "eu-west-1"},
		{"307 redirect", http.StatusTemporaryRedirect, redirectHeader, true, OutcomeRedirect, "eu-west-1"},
		{"301 without region header", http.StatusMovedPermanently, nil, false, 0, ""},
		{"400 bad request", http.StatusBadRequest, redirectHeader, false, 0, ""},
		{"500 internal error", http.StatusInternalServerError, nil, false, 0, ""},
		{"503 slow down", http.StatusServiceUnavailable, nil, false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, ok := classify(target, tt.status, tt.header)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantKind, outcome.Kind)
			assert.Equal(t, "b", outcome.Bucket)
			assert.Equal(t, tt.wantRegion, outcome.Region)
		})
	}
}

func TestProber_Probe(t *testing.T) {
	target := BucketTarget{Name: "mybucket", Region: "us-west-1"}
	redirect := http.Header{}
	redirect.Set(bucketRegionHeader, "us-west-2")

	tests := []struct {
		name       string
		headErr    error
		wantKind   OutcomeKind
		wantRegion string
		wantErr    error
	}{
		{"open bucket", nil, OutcomeFound, "us-west-1", nil},
		{"closed bucket", responseError(403, nil, "Forbidden"), OutcomeForbidden, "us-west-1", nil},
		{"no such bucket", responseError(404, nil, "NotFound"), OutcomeNotFound, "us-west-1", nil},
		{"wrong region", responseError(301, redirect, "PermanentRedirect"), OutcomeRedirect, "us-west-2", nil},
		{
			"name does not resolve",
			&smithy.OperationError{ServiceID: "S3", OperationName: "HeadBucket", Err: &net.DNSError{Err: "no such host", Name: "x", IsNotFound: true}},
			OutcomeNotFound, "us-west-1", nil,
		},
		{"unknown status", responseError(500, nil, "InternalError"), 0, "", ErrUnknownResponse},
		{"redirect without region", responseError(301, nil, "PermanentRedirect"), 0, "", ErrUnknownResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockS3Client{
				HeadBucketFunc: func(context.Context, *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
					if tt.headErr != nil {
						return nil, tt.headErr
					}
					return &s3.HeadBucketOutput{}, nil
				},
			}
			prober := NewProber(clientsFor(client), false, zerolog.Nop())

			outcome, err := prober.Probe(context.Background(), target)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var bucketErr *BucketError
				require.ErrorAs(t, err, &bucketErr)
				assert.Equal(t, "mybucket", bucketErr.Bucket)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, outcome.Kind)
			assert.Equal(t, "mybucket", outcome.Bucket)
			assert.Equal(t, tt.wantRegion, outcome.Region)

			head, list, _ := client.calls()
			assert.Equal(t, 1, head, "HeadBucket is sent exactly once")
			assert.Zero(t, list, "no listing without summarize")
		})
	}
}

func TestProber_Probe_UnknownResponseIncludesCode(t *testing.T) {
	client := &mockS3Client{
		HeadBucketFunc: func(context.Context, *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
			return nil, responseError(400, nil, "InvalidBucketName")
		},
	}
	_, err := NewProber(clientsFor(client), false, zerolog.Nop()).Probe(context.Background(), BucketTarget{"b", "us-west-1"})
	require.ErrorIs(t, err, ErrUnknownResponse)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Contains(t, err.Error(), "InvalidBucketName")
}

func TestProber_Probe_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &mockS3Client{
		HeadBucketFunc: func(ctx context.Context, _ *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
			return nil, ctx.Err()
		},
	}
	_, err := NewProber(clientsFor(client), false, zerolog.Nop()).Probe(ctx, BucketTarget{"b", "us-west-1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProber_Probe_Summary(t *testing.T) {
	client := &mockS3Client{
		ListObjectsV2Func: pagedListing([]string{"a", "b", "c", "d", "e"}, 2, 1024),
	}
	prober := NewProber(clientsFor(client), true, zerolog.Nop())

	outcome, err := prober.Probe(context.Background(), BucketTarget{"open", "us-west-2"})
	require.NoError(t, err)
	require.Equal(t, OutcomeFound, outcome.Kind)
	require.NotNil(t, outcome.Summary)
	assert.Equal(t, int64(5), outcome.Summary.Objects)
	assert.Equal(t, int64(5*1024), outcome.Summary.Bytes)
	assert.Equal(t, "5 objects, 5.0 KiB", outcome.Summary.String())

	_, list, _ := client.calls()
	assert.Equal(t, 3, list, "follows continuation tokens across three pages")
}

func TestProber_Probe_SummaryFailureKeepsFound(t *testing.T) {
	client := &mockS3Client{
		ListObjectsV2Func: func(context.Context, *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			return nil, errors.New("connection reset")
		},
	}
	outcome, err := NewProber(clientsFor(client), true, zerolog.Nop()).Probe(context.Background(), BucketTarget{"open", "us-west-2"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFound, outcome.Kind)
	assert.Nil(t, outcome.Summary)
	assert.Equal(t, "size unknown", outcome.Summary.String())
}

func TestProber_Probe_Idempotent(t *testing.T) {
	for _, status := range []int{0, 403, 404} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			client := &mockS3Client{
				HeadBucketFunc: func(context.Context, *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
					if status == 0 {
						return &s3.HeadBucketOutput{}, nil
					}
					return nil, responseError(status, nil, "")
				},
			}
			prober := NewProber(clientsFor(client), false, zerolog.Nop())
			target := BucketTarget{"same", "us-west-1"}

			first, err := prober.Probe(context.Background(), target)
			require.NoError(t, err)
			second, err := prober.Probe(context.Background(), target)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestProber_Probe_UsesTargetRegionClient(t *testing.T) {
	var regions []string
	client := &mockS3Client{}
	clients := func(region string) S3API {
		regions = append(regions, region)
		return client
	}
	_, err := NewProber(clients, false, zerolog.Nop()).Probe(context.Background(), BucketTarget{"b", "ap-south-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ap-south-1"}, regions)
}

// fakeS3Server はパス形式のS3エンドポイントを模したサーバー
func fakeS3Server(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	heads := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			heads.Add(1)
		}
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/open-bucket":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Path == "/open-bucket" && r.URL.Query().Get("list-type") == "2":
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>open-bucket</Name><Prefix></Prefix><KeyCount>2</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated><Contents><Key>a.txt</Key><Size>10</Size></Contents><Contents><Key>dir/b.txt</Key><Size>20</Size></Contents></ListBucketResult>`)
		case r.Method == http.MethodHead && r.URL.Path == "/closed-bucket":
			w.WriteHeader(http.StatusForbidden)
		case r.Method == http.MethodHead && r.URL.Path == "/moved-bucket":
			w.Header().Set("X-Amz-Bucket-Region", "eu-west-1")
			w.WriteHeader(http.StatusMovedPermanently)
		case r.Method == http.MethodHead && r.URL.Path == "/temp-moved-bucket":
			w.Header().Set("X-Amz-Bucket-Region", "ap-northeast-1")
			w.Header().Set("Location", "http://example.invalid/temp-moved-bucket")
			w.WriteHeader(http.StatusTemporaryRedirect)
		case r.Method == http.MethodHead && r.URL.Path == "/broken-bucket":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, heads
}

func TestProber_Probe_HTTPEndpoint(t *testing.T) {
	srv, heads := fakeS3Server(t)

	clients, err := internalaws.NewAwsClients(internalaws.Context{
		Region:    "us-west-1",
		Endpoint:  srv.URL,
		PathStyle: true,
	})
	require.NoError(t, err)
	prober := NewProber(func(region string) S3API { return clients.S3(region) }, true, zerolog.Nop())

	tests := []struct {
		bucket     string
		wantKind   OutcomeKind
		wantRegion string
	}{
		{"open-bucket", OutcomeFound, "us-west-1"},
		{"closed-bucket", OutcomeForbidden, "us-west-1"},
		{"moved-bucket", OutcomeRedirect, "eu-west-1"},
		{"temp-moved-bucket", OutcomeRedirect, "ap-northeast-1"},
		{"missing-bucket", OutcomeNotFound, "us-west-1"},
	}
	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			outcome, err := prober.Probe(context.Background(), BucketTarget{tt.bucket, "us-west-1"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, outcome.Kind)
			assert.Equal(t, tt.wantRegion, outcome.Region)
			if tt.wantKind == OutcomeFound {
				require.NotNil(t, outcome.Summary)
				assert.Equal(t, int64(2), outcome.Summary.Objects)
				assert.Equal(t, int64(30), outcome.Summary.Bytes)
			}
		})
	}
	assert.Equal(t, int32(len(tests)), heads.Load(), "one HEAD per probe and redirects are not followed")

	_, err = prober.Probe(context.Background(), BucketTarget{"broken-bucket", "us-west-1"})
	assert.ErrorIs(t, err, ErrUnknownResponse)
}

func TestProber_Probe_EmptyNameSendsNoRequest(t *testing.T) {
	client := &mockS3Client{}
	outcome, err := NewProber(clientsFor(client), true, zerolog.Nop()).Probe(context.Background(), Normalize("https://s3.us-east-1.amazonaws.com/", "us-west-1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome.Kind)
	assert.Empty(t, outcome.Bucket)
	assert.Equal(t, "us-east-1", outcome.Region)

	head, list, _ := client.calls()
	assert.Zero(t, head)
	assert.Zero(t, list)
}
