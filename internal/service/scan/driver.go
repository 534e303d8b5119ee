// Package scan は入力行を順に判定し、結果を画面と結果ファイルに出力する
package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"s3scanner/internal/config"
	"s3scanner/internal/service/common"
	s3svc "s3scanner/internal/service/s3"
)

// BucketProber はバケット1件を1回だけ判定する
type BucketProber interface {
	Probe(ctx context.Context, target s3svc.BucketTarget) (s3svc.ProbeOutcome, error)
}

// BucketDumper は公開バケットの中身を保存する
type BucketDumper interface {
	Dump(ctx context.Context, target s3svc.BucketTarget, onResult func(s3svc.DumpResult)) (s3svc.DumpStats, error)
}

// Summary はスキャン全体の集計
type Summary struct {
	Open     int
	Closed   int
	NotFound int
	Failed   int // 不明なレスポンス・リダイレクトの連続
}

// Total は処理したバケット数を返す
func (s Summary) Total() int {
	return s.Open + s.Closed + s.NotFound + s.Failed
}

// Driver は入力行ごとに 正規化 → 判定 → (ダンプ) → 出力 を順に行う
type Driver struct {
	cfg      config.Config
	prober   BucketProber
	dumper   BucketDumper // ダンプしない場合はnil
	screen   ScreenSink
	file     FileSink
	progress io.Writer // ダンプ進捗の出力先（nilなら表示しない）
	logger   zerolog.Logger
}

// Option は Driver の任意設定
type Option func(*Driver)

// WithDumper はダンプ処理を設定する（cfg.Dump が true の場合のみ使われる）
func WithDumper(dumper BucketDumper) Option {
	return func(d *Driver) { d.dumper = dumper }
}

// WithProgress はダンプ進捗の出力先を設定する
func WithProgress(w io.Writer) Option {
	return func(d *Driver) { d.progress = w }
}

// WithLogger は診断用ロガーを設定する
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// NewDriver は Driver を作成する
func NewDriver(cfg config.Config, prober BucketProber, screen ScreenSink, file FileSink, opts ...Option) *Driver {
	d := &Driver{
		cfg:    cfg,
		prober: prober,
		screen: screen,
		file:   file,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run は r の各行を入力順に処理する
// 判定できなかったバケットは画面に出力して Summary.Failed に数え、次の行へ進む
// 結果ファイルへの書き込み失敗とコンテキストのキャンセルでは中断する
func (d *Driver) Run(ctx context.Context, r io.Reader) (Summary, error) {
	var summary Summary

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := d.scanLine(ctx, line, &summary); err != nil {
			return summary, err
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("入力の読み込みに失敗: %w", err)
	}
	return summary, nil
}

func (d *Driver) scanLine(ctx context.Context, line string, summary *Summary) error {
	target := s3svc.Normalize(line, d.cfg.DefaultRegion)
	log := d.logger.With().Str("bucket", target.Name).Str("region", target.Region).Logger()

	outcome, err := d.resolve(ctx, target)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		summary.Failed++
		log.Error().Err(err).Msg("判定に失敗")
		rec := ScanRecord{Bucket: target.Name, Region: target.Region, Status: StatusError, Detail: err.Error()}
		// リダイレクト後の再判定で失敗した場合は補正後のリージョンを表示する
		var bucketErr *s3svc.BucketError
		if errors.As(err, &bucketErr) && bucketErr.Region != "" {
			rec.Region = bucketErr.Region
		}
		if errors.Is(err, s3svc.ErrRedirectLoop) {
			rec.Status = StatusNotFound
		}
		d.screen.Record(rec)
		return nil
	}

	rec := ScanRecord{Bucket: outcome.Bucket, Region: outcome.Region}
	switch outcome.Kind {
	case s3svc.OutcomeNotFound:
		summary.NotFound++
		rec.Status = StatusNotFound
		d.screen.Record(rec)

	case s3svc.OutcomeForbidden:
		summary.Closed++
		rec.Status = StatusClosed
		d.screen.Record(rec)
		if d.cfg.IncludeClosed {
			if err := d.file.Append(rec); err != nil {
				return fmt.Errorf("結果ファイルへの書き込みに失敗: %w", err)
			}
		}

	case s3svc.OutcomeFound:
		summary.Open++
		rec.Status = StatusOpen
		rec.Detail = outcome.Summary.String()
		d.screen.Record(rec)
		if err := d.file.Append(rec); err != nil {
			return fmt.Errorf("結果ファイルへの書き込みに失敗: %w", err)
		}
		if d.cfg.Dump && d.dumper != nil {
			d.dump(ctx, outcome.Target(), log)
		}

	default:
		// resolve はリダイレクトを終端状態として返さない
		return fmt.Errorf("想定外の判定結果: %s", outcome.Kind)
	}
	return nil
}

// resolve は判定を行い、リダイレクトされた場合は正しいリージョンで1回だけ再判定する
func (d *Driver) resolve(ctx context.Context, target s3svc.BucketTarget) (s3svc.ProbeOutcome, error) {
	outcome, err := d.prober.Probe(ctx, target)
	if err != nil || outcome.Kind != s3svc.OutcomeRedirect {
		return outcome, err
	}

	retry := s3svc.BucketTarget{Name: target.Name, Region: outcome.Region}
	d.logger.Debug().Str("bucket", target.Name).Str("from", target.Region).Str("to", retry.Region).Msg("リージョンを補正して再判定")

	outcome, err = d.prober.Probe(ctx, retry)
	if err != nil {
		return outcome, err
	}
	if outcome.Kind == s3svc.OutcomeRedirect {
		return s3svc.ProbeOutcome{}, &s3svc.BucketError{
			Op:     "probe",
			Bucket: retry.Name,
			Region: retry.Region,
			Err:    fmt.Errorf("%w: %s -> %s", s3svc.ErrRedirectLoop, retry.Region, outcome.Region),
		}
	}
	return outcome, nil
}

// dump は公開バケットの中身を保存し、1件ごとの結果を画面に出力する
func (d *Driver) dump(ctx context.Context, target s3svc.BucketTarget, log zerolog.Logger) {
	var bar *progressbar.ProgressBar
	if d.progress != nil {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(d.progress),
			progressbar.OptionSetDescription(fmt.Sprintf("%s %s", common.ProcessIcon, target.Name)),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}

	stats, err := d.dumper.Dump(ctx, target, func(res s3svc.DumpResult) {
		d.screen.Object(res)
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}

	if err != nil {
		log.Error().Err(err).Msg("オブジェクト一覧の取得に失敗")
		d.screen.Record(ScanRecord{Bucket: target.Name, Region: target.Region, Status: StatusError, Detail: err.Error()})
	}
	if stats.Failed > 0 {
		log.Warn().Int("failed", stats.Failed).Msg(common.WarningIcon + " 一部のオブジェクトを保存できませんでした")
	}
	log.Info().
		Int("listed", stats.Listed).
		Int("downloaded", stats.Downloaded).
		Int("failed", stats.Failed).
		Str("bytes", common.FormatBytes(stats.Bytes)).
		Msg(common.PartyIcon + " ダンプ完了")
}
