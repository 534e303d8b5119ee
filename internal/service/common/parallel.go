package common

import (
	"sync"
)

// ParallelExecutor は並列処理を管理する構造体
// 同時実行数に空きがない間は Execute が呼び出し元をブロックする
type ParallelExecutor struct {
	maxWorkers int
	wg         sync.WaitGroup
	semaphore  chan struct{}
}

// NewParallelExecutor は新しいParallelExecutorを作成
// maxWorkers が1未満の場合は1として扱う
func NewParallelExecutor(maxWorkers int) *ParallelExecutor {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &ParallelExecutor{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// Execute はタスクを並列で実行
// セマフォを呼び出し側で取得するため、maxWorkers=1 なら投入順に1件ずつ実行される
func (p *ParallelExecutor) Execute(task func()) {
	p.semaphore <- struct{}{} // セマフォ取得（同時実行数制限）
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { <-p.semaphore }() // セマフォ解放
		task()
	}()
}

// Wait はすべてのタスクの完了を待つ
func (p *ParallelExecutor) Wait() {
	p.wg.Wait()
}

// MaxWorkers は最大同時実行数を返す
func (p *ParallelExecutor) MaxWorkers() int {
	return p.maxWorkers
}
