package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/pkg/logger"
)

// NotificationDispatcher 通知投递入口；评论/点赞服务只依赖这个接口
type NotificationDispatcher interface {
	Dispatch(n *model.Notification)
}

// Notifier 简单的本地异步通知执行器：有界队列 + 固定 worker。
// 通知是尽力而为，队列满直接丢弃并告警，不阻塞业务写路径。
type Notifier struct {
	notifSvc NotificationService
	ch       chan *model.Notification
}

func NewNotifier(notifSvc NotificationService, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &Notifier{notifSvc: notifSvc, ch: make(chan *model.Notification, queueSize)}
}

func (n *Notifier) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-n.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := n.notifSvc.Create(ctx, job); err != nil {
						logger.Warn("notification create failed",
							zap.String("recipient", job.RecipientID),
							zap.String("verb", job.Verb),
							zap.Error(err))
					}
					cancel()
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(n.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (n *Notifier) Dispatch(job *model.Notification) {
	select {
	case n.ch <- job:
	default:
		logger.Warn("notifier queue full, drop",
			zap.String("recipient", job.RecipientID),
			zap.String("verb", job.Verb))
	}
}

// QueueLen 返回当前队列长度（采样值）。
func (n *Notifier) QueueLen() int { return len(n.ch) }

// SyncDispatcher 同步投递实现，测试与脚本场景用
type SyncDispatcher struct {
	NotifSvc NotificationService
}

func (d *SyncDispatcher) Dispatch(n *model.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.NotifSvc.Create(ctx, n); err != nil {
		logger.Warn("notification create failed", zap.Error(err))
	}
}
