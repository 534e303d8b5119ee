package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// bucketRegionHeader はリージョン不一致時にS3が正しいリージョンを返すヘッダー
const bucketRegionHeader = "X-Amz-Bucket-Region"

// Prober は匿名のHeadBucketでバケットの存在・権限・リージョンを判定する
type Prober struct {
	clients   ClientFunc
	summarize bool
	logger    zerolog.Logger
}

// NewProber はProberを作成する
// summarize が true の場合、公開バケットのオブジェクト数と合計サイズも取得する
func NewProber(clients ClientFunc, summarize bool, logger zerolog.Logger) *Prober {
	return &Prober{
		clients:   clients,
		summarize: summarize,
		logger:    logger.With().Str("component", "prober").Logger(),
	}
}

// Probe は target に対して1回だけ判定リクエストを送る
// リダイレクトは追従せず OutcomeRedirect として返す
func (p *Prober) Probe(ctx context.Context, target BucketTarget) (ProbeOutcome, error) {
	log := p.logger.With().Str("bucket", target.Name).Str("region", target.Region).Logger()

	// URLからバケット名を取り出せなかった入力にはリクエストを送らない
	if target.Name == "" {
		return ProbeOutcome{
			Kind:   OutcomeNotFound,
			Region: target.Region,
			Reason: "empty bucket name",
		}, nil
	}
	client := p.clients(target.Region)

	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(target.Name),
	})
	if err == nil {
		outcome, _ := classify(target, http.StatusOK, nil)
		if p.summarize {
			outcome.Summary = p.summarizeBucket(ctx, client, target, log)
		}
		return outcome, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ProbeOutcome{}, ctxErr
	}

	// HTTPレスポンスがない（名前解決失敗・接続失敗など）場合は存在しないものとして扱う
	var respErr *awshttp.ResponseError
	if !errors.As(err, &respErr) {
		log.Debug().Err(err).Msg("HTTPレスポンスなし")
		return ProbeOutcome{
			Kind:   OutcomeNotFound,
			Bucket: target.Name,
			Region: target.Region,
			Reason: err.Error(),
		}, nil
	}

	statusCode := respErr.HTTPStatusCode()
	outcome, ok := classify(target, statusCode, responseHeader(respErr))
	if !ok {
		return ProbeOutcome{}, &BucketError{
			Op:     "probe",
			Bucket: target.Name,
			Region: target.Region,
			Err:    fmt.Errorf("%w: HTTP %d%s", ErrUnknownResponse, statusCode, apiErrorCode(err)),
		}
	}
	log.Debug().Int("status", statusCode).Stringer("outcome", outcome.Kind).Msg("判定完了")
	return outcome, nil
}

// classify はHTTPステータスを判定結果に変換する唯一の境界
// 既知のステータス以外は ok=false を返し、推測で分類しない
func classify(target BucketTarget, statusCode int, header http.Header) (outcome ProbeOutcome, ok bool) {
	outcome = ProbeOutcome{Bucket: target.Name, Region: target.Region}

	switch statusCode {
	case http.StatusOK:
		outcome.Kind = OutcomeFound
	case http.StatusForbidden:
		outcome.Kind = OutcomeForbidden
	case http.StatusNotFound:
		outcome.Kind = OutcomeNotFound
		outcome.Reason = "no such bucket"
	case http.StatusMovedPermanently, http.StatusTemporaryRedirect:
		region := header.Get(bucketRegionHeader)
		if region == "" {
			return ProbeOutcome{}, false
		}
		outcome.Kind = OutcomeRedirect
		outcome.Region = region
	default:
		return ProbeOutcome{}, false
	}
	return outcome, true
}

// summarizeBucket は一覧を取得してオブジェクト数と合計サイズを返す
// 失敗しても判定結果は変えず nil を返す
func (p *Prober) summarizeBucket(ctx context.Context, client S3API, target BucketTarget, log zerolog.Logger) *BucketSummary {
	summary, err := SummarizeBucket(ctx, client, target.Name)
	if err != nil {
		log.Warn().Err(err).Msg("バケットサイズの取得に失敗")
		return nil
	}
	return &summary
}

func responseHeader(respErr *awshttp.ResponseError) http.Header {
	if respErr.Response == nil || respErr.Response.Response == nil {
		return nil
	}
	return respErr.Response.Header
}

// apiErrorCode はS3のエラーコード（例: PermanentRedirect）をメッセージ用に取り出す
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() != "" {
		return " (" + apiErr.ErrorCode() + ")"
	}
	return ""
}
