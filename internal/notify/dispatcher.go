package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"appointly/internal/core/metrics"
	"appointly/internal/domain"
)

// Sink 一种投递渠道
type Sink interface {
	Name() string
	Deliver(ctx context.Context, m Message) error
}

// Dispatcher 有界队列 + 固定 worker；入队不阻塞，队满丢弃
type Dispatcher struct {
	log     *zap.Logger
	sinks   []Sink
	queue   chan Message
	workers int
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	g      *errgroup.Group
}

type Options struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

func NewDispatcher(log *zap.Logger, opt Options, sinks ...Sink) *Dispatcher {
	if opt.QueueSize <= 0 {
		opt.QueueSize = 256
	}
	if opt.Workers <= 0 {
		opt.Workers = 2
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 15 * time.Second
	}
	return &Dispatcher{
		log:     log,
		sinks:   sinks,
		queue:   make(chan Message, opt.QueueSize),
		workers: opt.Workers,
		timeout: opt.Timeout,
	}
}

// Start 启动 worker；ctx 作为投递的父 context
func (d *Dispatcher) Start(ctx context.Context) {
	g, ctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for m := range d.queue {
				metrics.NotifyQueueDepth.Set(float64(len(d.queue)))
				_, _ = d.deliverAll(ctx, m)
			}
			return nil
		})
	}
	d.g = g
}

// Close 停止入队并等待队列排空
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	if d.g != nil {
		_ = d.g.Wait()
	}
}

func (d *Dispatcher) enqueue(m Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.NotificationsDropped.Inc()
		d.log.Warn("notification dropped: dispatcher closed", zap.String("kind", string(m.Kind)))
		return
	}
	select {
	case d.queue <- m:
		metrics.NotifyQueueDepth.Set(float64(len(d.queue)))
	default:
		metrics.NotificationsDropped.Inc()
		d.log.Warn("notification dropped: queue full",
			zap.String("kind", string(m.Kind)),
			zap.String("booking_id", m.BookingID),
		)
	}
}

// deliverAll 逐个渠道投递，返回成功的渠道数与所有失败
func (d *Dispatcher) deliverAll(ctx context.Context, m Message) (int, error) {
	var (
		errs []error
		sent int
	)
	for _, s := range d.sinks {
		if err := d.deliverOne(ctx, s, m); err != nil {
			metrics.NotificationsFailed.WithLabelValues(s.Name(), string(m.Kind)).Inc()
			d.log.Error("notification failed",
				zap.String("sink", s.Name()),
				zap.String("kind", string(m.Kind)),
				zap.String("booking_id", m.BookingID),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		sent++
		metrics.NotificationsSent.WithLabelValues(s.Name(), string(m.Kind)).Inc()
	}
	return sent, errors.Join(errs...)
}

func (d *Dispatcher) deliverOne(ctx context.Context, s Sink, m Message) (err error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Deliver(ctx, m)
}

func (d *Dispatcher) NotifyAdminNewBooking(_ context.Context, b *domain.Booking) {
	d.enqueue(bookingMessage(KindNewBooking, b))
}

func (d *Dispatcher) NotifyUserConfirmed(_ context.Context, b *domain.Booking) {
	d.enqueue(bookingMessage(KindBookingConfirmed, b))
}

func (d *Dispatcher) NotifyUserCancelled(_ context.Context, b *domain.Booking) {
	d.enqueue(bookingMessage(KindBookingCancelled, b))
}

func (d *Dispatcher) NotifyWelcome(_ context.Context, u *domain.User) {
	d.enqueue(welcomeMessage(u))
}
