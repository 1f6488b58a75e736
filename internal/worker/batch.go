// Package worker параллельное применение пачки корректировок баланса.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	defaultItemTimeout        = 3 * time.Second
	defaultWorkers       uint = 8
)

// BatchApplier применяет корректировки через сервисный слой несколькими воркерами. Корректировки одного юзера
// сериализует сам сервис, поэтому порядок их применения внутри пачки не гарантирован.
type BatchApplier struct {
	svs         Applier
	l           *logrus.Entry
	workers     uint
	itemTimeout time.Duration
}

func New(svs Applier, l *logrus.Logger) *BatchApplier {
	return &BatchApplier{
		svs: svs,
		l: l.WithFields(logrus.Fields{
			"component": "worker",
			"module":    "batch",
		}),
		workers:     defaultWorkers,
		itemTimeout: defaultItemTimeout,
	}
}

// SetWorkers устанавливает кол-во воркеров. 0 заменяется на 1.
func (b *BatchApplier) SetWorkers(workers uint) *BatchApplier {
	if workers == 0 {
		workers = 1
	}
	b.workers = workers
	return b
}

// SetItemTimeout устанавливает таймаут применения одной корректировки.
func (b *BatchApplier) SetItemTimeout(timeout time.Duration) *BatchApplier {
	b.itemTimeout = timeout
	return b
}

// Result итог применения одного элемента пачки. Index - позиция элемента во входном срезе.
type Result struct {
	Index       int
	User        *domain.User
	Transaction *domain.Transaction
	Error       error
}

type task struct {
	index int
	args  service.ApplyAdjustmentArgs
}

// Apply применяет items и возвращает результаты в порядке входных элементов. Ошибка одного элемента не
// останавливает остальные. Если ctx отменен, необработанные элементы получают ошибку контекста.
//
// Реализует паттерн fan-out/fan-in: задачи раздаются через канал воркерам, результаты собираются в
// общий канал и раскладываются по индексам.
func (b *BatchApplier) Apply(ctx context.Context, items []service.ApplyAdjustmentArgs) []Result {
	results := make([]Result, len(items))
	if len(items) == 0 {
		return results
	}

	taskCh := make(chan task, len(items))
	for i, item := range items {
		taskCh <- task{index: i, args: item}
	}
	close(taskCh)

	workers := min(b.workers, uint(len(items))) //nolint:gosec
	resultCh := make(chan Result, len(items))

	wg := new(sync.WaitGroup)
	wg.Add(int(workers)) //nolint:gosec
	for i := range workers {
		go b.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()
	close(resultCh)

	done := make([]bool, len(items))
	var failed int
	for result := range resultCh {
		results[result.Index] = result
		done[result.Index] = true
		if result.Error != nil {
			failed++
		}
	}
	for i := range results {
		if !done[i] {
			results[i] = Result{Index: i, Error: ctx.Err()}
			failed++
		}
	}

	b.l.WithFields(logrus.Fields{
		"items":  len(items),
		"failed": failed,
	}).Info("batch applied")
	return results
}

func (b *BatchApplier) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan task,
	resultCh chan<- Result,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-taskCh:
			if !ok {
				return
			}
			resultCh <- b.process(ctx, workerID, t)
		}
	}
}

func (b *BatchApplier) process(ctx context.Context, workerID uint, t task) Result {
	itemCtx, cancel := context.WithTimeout(ctx, b.itemTimeout)
	defer cancel()

	user, transaction, err := b.svs.ApplyAdjustment(itemCtx, t.args)
	if err != nil {
		b.l.WithError(err).WithFields(logrus.Fields{
			"worker": workerID,
			"userID": t.args.UserID,
			"index":  t.index,
		}).Warn("batch item failed")
	}
	return Result{
		Index:       t.index,
		User:        user,
		Transaction: transaction,
		Error:       err,
	}
}
