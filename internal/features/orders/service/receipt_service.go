package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"envios-web/internal/core/clock"
	"envios-web/internal/core/imaging"
	"envios-web/internal/core/logger"
	"envios-web/internal/core/metrics"
	"envios-web/internal/core/notify"
	"envios-web/internal/core/tasks"
	"envios-web/internal/features/orders/domain"
	"envios-web/internal/features/orders/ports"

	"go.uber.org/zap"
)

const compressNoticeID = "compress"

// ErrReceiptPending is returned when a payment is reported while its receipt is still being compressed.
var ErrReceiptPending = errors.New("receipt still processing")

// ReceiptStatus is what the payment form shows about the attached receipt.
type ReceiptStatus struct {
	State          domain.ReceiptState `json:"state"`
	Preview        string              `json:"preview,omitempty"`
	OriginalSize   string              `json:"originalSize,omitempty"`
	CompressedSize string              `json:"compressedSize,omitempty"`
	Notices        []notify.Notice     `json:"notices,omitempty"`
}

type job struct {
	state   domain.ReceiptState
	notices []notify.Notice
}

// slot serializes the store writes of one order and session.
type slot struct {
	mu   sync.Mutex
	refs int
}

// ReceiptService compresses uploaded receipts in the background. One compression runs per
// order and session; a newer upload supersedes the one in flight.
type ReceiptService struct {
	store ports.ReceiptStore
	opts  imaging.Options
	clock clock.Clock
	tasks *tasks.Group
	log   *zap.Logger

	mu    sync.Mutex
	jobs  map[string]*job
	slots map[string]*slot
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(store ports.ReceiptStore, opts imaging.Options, c clock.Clock) *ReceiptService {
	return &ReceiptService{
		store: store,
		opts:  opts,
		clock: c,
		tasks: tasks.NewGroup(),
		log:   logger.Named("receipts"),
		jobs:  make(map[string]*job),
		slots: make(map[string]*slot),
	}
}

func jobKey(sid, orderID string) string {
	return sid + ":" + orderID
}

// lockSlot locks the store slot of key and returns its unlock. s.mu is only held to
// look the slot up, so a slow store blocks no other order.
func (s *ReceiptService) lockSlot(key string) func() {
	s.mu.Lock()
	sl, ok := s.slots[key]
	if !ok {
		sl = &slot{}
		s.slots[key] = sl
	}
	sl.refs++
	s.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		s.mu.Lock()
		if sl.refs--; sl.refs == 0 {
			delete(s.slots, key)
		}
		s.mu.Unlock()
	}
}

// Upload checks data and starts compressing it. Oversized and non-image files are
// rejected here, before any work is scheduled.
func (s *ReceiptService) Upload(ctx context.Context, sid, orderID string, data []byte) (ReceiptStatus, error) {
	if _, err := imaging.Check(data, s.opts); err != nil {
		return ReceiptStatus{}, err
	}
	metrics.ReceiptBytes.WithLabelValues("original").Observe(float64(len(data)))

	key := jobKey(sid, orderID)
	loading := notify.Loading(compressNoticeID, "Procesando imagen...")

	// Registering the job and starting its task under one lock keeps an older task
	// from publishing between the two.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[key] = &job{state: domain.ReceiptProcessing}
	s.tasks.Start(ctx, key, func(ctx context.Context, token string) {
		res, err := imaging.Compress(ctx, data, s.opts)

		unlock := s.lockSlot(key)
		defer unlock()
		if !s.tasks.Current(key, token) {
			return
		}

		if err == nil {
			err = s.save(ctx, sid, orderID, res)
		} else if derr := s.drop(sid, orderID); derr != nil {
			s.log.Warn("Failed to drop previous receipt", zap.String("order_id", orderID), zap.Error(derr))
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		// Superseded while saving: the newer task or Remove owns the slot next.
		if !s.tasks.Current(key, token) {
			return
		}
		if err != nil {
			s.log.Warn("Receipt compression failed", zap.String("order_id", orderID), zap.Error(err))
			s.jobs[key] = &job{
				state:   domain.ReceiptFailed,
				notices: []notify.Notice{notify.Dismiss(compressNoticeID), notify.Error("Error al procesar la imagen")},
			}
			return
		}

		metrics.ReceiptBytes.WithLabelValues("compressed").Observe(float64(len(res.Data)))
		msg := fmt.Sprintf("Imagen optimizada: %s → %s", imaging.KB(res.OriginalBytes), imaging.KB(len(res.Data)))
		s.jobs[key] = &job{
			state:   domain.ReceiptReady,
			notices: []notify.Notice{notify.Dismiss(compressNoticeID), notify.Success(msg)},
		}
	})

	return ReceiptStatus{State: domain.ReceiptProcessing, Notices: []notify.Notice{loading}}, nil
}

func (s *ReceiptService) drop(sid, orderID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.store.Delete(ctx, sid, orderID)
}

func (s *ReceiptService) save(ctx context.Context, sid, orderID string, res imaging.Result) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.store.Save(ctx, sid, domain.Receipt{
		OrderID:         orderID,
		Data:            res.Data,
		ContentType:     res.ContentType,
		Width:           res.Width,
		Height:          res.Height,
		OriginalBytes:   res.OriginalBytes,
		CompressedBytes: len(res.Data),
		CreatedAt:       s.clock.Now(),
	})
}

// Status reports the receipt of orderID. Completion notices are delivered once.
func (s *ReceiptService) Status(ctx context.Context, sid, orderID string) (ReceiptStatus, error) {
	key := jobKey(sid, orderID)

	s.mu.Lock()
	j, ok := s.jobs[key]
	var out ReceiptStatus
	if ok {
		out = ReceiptStatus{State: j.state, Notices: j.notices}
		if j.state == domain.ReceiptProcessing {
			s.mu.Unlock()
			return out, nil
		}
		delete(s.jobs, key)
	}
	s.mu.Unlock()

	if out.State == domain.ReceiptFailed {
		return out, nil
	}

	r, found, err := s.store.Load(ctx, sid, orderID)
	if err != nil {
		return ReceiptStatus{}, fmt.Errorf("failed to load receipt: %w", err)
	}
	if !found {
		return ReceiptStatus{State: domain.ReceiptNone}, nil
	}
	out.State = domain.ReceiptReady
	out.Preview = r.Preview()
	out.OriginalSize = imaging.KB(r.OriginalBytes)
	out.CompressedSize = imaging.KB(r.CompressedBytes)
	return out, nil
}

// Take returns the compressed receipt of orderID for submission.
func (s *ReceiptService) Take(ctx context.Context, sid, orderID string) (domain.Receipt, bool, error) {
	s.mu.Lock()
	j, ok := s.jobs[jobKey(sid, orderID)]
	pending := ok && j.state == domain.ReceiptProcessing
	s.mu.Unlock()
	if pending {
		return domain.Receipt{}, false, ErrReceiptPending
	}

	r, found, err := s.store.Load(ctx, sid, orderID)
	if err != nil {
		return domain.Receipt{}, false, fmt.Errorf("failed to load receipt: %w", err)
	}
	return r, found, nil
}

// Remove cancels any compression in flight and drops the stored receipt. It waits for a
// save already in progress so nothing it wrote survives.
func (s *ReceiptService) Remove(ctx context.Context, sid, orderID string) error {
	key := jobKey(sid, orderID)

	s.mu.Lock()
	s.tasks.Cancel(key)
	delete(s.jobs, key)
	s.mu.Unlock()

	unlock := s.lockSlot(key)
	defer unlock()
	return s.store.Delete(ctx, sid, orderID)
}

// Wait blocks until every compression finished. Used on shutdown and in tests.
func (s *ReceiptService) Wait(ctx context.Context) error {
	return s.tasks.Wait(ctx)
}
