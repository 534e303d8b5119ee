package s3

import (
	"context"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Objects はバケット内の全オブジェクトを順に返す
// ListObjectsV2の継続トークンは内部で処理し、呼び出し側が止めるまで必要な分だけページを取得する
// 一覧取得に失敗した場合はエラーを1回返して終了する
func Objects(ctx context.Context, client S3API, bucket string) iter.Seq2[S3Object, error] {
	return func(yield func(S3Object, error) bool) {
		paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
			Bucket: aws.String(bucket),
		})

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(S3Object{}, &BucketError{Op: "list", Bucket: bucket, Err: err})
				return
			}

			for _, obj := range page.Contents {
				object := S3Object{
					Key:          aws.ToString(obj.Key),
					Size:         aws.ToInt64(obj.Size),
					LastModified: aws.ToTime(obj.LastModified),
				}
				if !yield(object, nil) {
					return
				}
			}
		}
	}
}

// SummarizeBucket はバケット全体のオブジェクト数と合計サイズを集計する
func SummarizeBucket(ctx context.Context, client S3API, bucket string) (BucketSummary, error) {
	var summary BucketSummary
	for obj, err := range Objects(ctx, client, bucket) {
		if err != nil {
			return BucketSummary{}, fmt.Errorf("バケットサイズ集計エラー: %w", err)
		}
		summary.Objects++
		summary.Bytes += obj.Size
	}
	return summary, nil
}
