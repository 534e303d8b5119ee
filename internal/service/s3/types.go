package s3

import (
	"fmt"
	"time"

	"s3scanner/internal/service/common"
)

// BucketTarget は判定対象のバケット名とリージョンの組
type BucketTarget struct {
	Name   string
	Region string
}

// String は "バケット名:リージョン" 形式で返す（結果ファイルの行形式と同じ）
func (t BucketTarget) String() string {
	return t.Name + ":" + t.Region
}

// OutcomeKind はバケット判定結果の種別
type OutcomeKind int

const (
	OutcomeNotFound  OutcomeKind = iota // バケットが存在しない
	OutcomeRedirect                     // リージョン不一致（正しいリージョンを伴う）
	OutcomeForbidden                    // 存在するがアクセス不可
	OutcomeFound                        // 存在し一覧取得可能
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNotFound:
		return "not found"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeForbidden:
		return "closed"
	case OutcomeFound:
		return "open"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// ProbeOutcome はProberが返す判定結果。生成後に変更しない
type ProbeOutcome struct {
	Kind    OutcomeKind
	Bucket  string
	Region  string         // Redirectの場合は正しいリージョン
	Summary *BucketSummary // Foundの場合のみ（取得できなかった場合はnil）
	Reason  string         // NotFoundの詳細
}

// Target は判定結果のバケット名とリージョンを BucketTarget として返す
func (o ProbeOutcome) Target() BucketTarget {
	return BucketTarget{Name: o.Bucket, Region: o.Region}
}

// BucketSummary は公開バケットのオブジェクト数と合計サイズ
type BucketSummary struct {
	Objects int64
	Bytes   int64
}

func (s *BucketSummary) String() string {
	if s == nil {
		return "size unknown"
	}
	return fmt.Sprintf("%d objects, %s", s.Objects, common.FormatBytes(s.Bytes))
}

// S3Object はS3オブジェクトの情報を格納する構造体
type S3Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// DumpResult はオブジェクト1件分のダウンロード結果
type DumpResult struct {
	Key         string
	Path        string // 保存先のローカルパス
	Size        int64
	ContentType string
	Err         error
}

// Failed はダウンロードに失敗したかを返す
func (r DumpResult) Failed() bool {
	return r.Err != nil
}

// DumpStats はバケット1件分のダンプ集計
type DumpStats struct {
	Listed     int
	Downloaded int
	Failed     int
	Bytes      int64
}

func (s *DumpStats) add(r DumpResult) {
	s.Listed++
	if r.Failed() {
		s.Failed++
		return
	}
	s.Downloaded++
	s.Bytes += r.Size
}
