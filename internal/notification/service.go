package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/finledger/groupledger/internal/balance"
	"github.com/finledger/groupledger/internal/group"
	"github.com/finledger/groupledger/internal/metrics"
)

// BalanceSource provides the per-member positions rendered onto passes.
type BalanceSource interface {
	ComputeBalances(ctx context.Context, groupID int64) ([]*balance.MemberBalance, error)
}

// GroupSource looks up group metadata for pass titles.
type GroupSource interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
}

// PassSender abstracts the wallet API client.
type PassSender interface {
	UpsertObject(ctx context.Context, data PassData) (string, error)
	CreateReceiptObject(ctx context.Context, data ReceiptData) (string, error)
	SaveURL(objectID string) (string, error)
}

// Service issues wallet passes reflecting a group's current balances.
// Failed groups are queued and retried in the background.
type Service struct {
	store    Store
	balances BalanceSource
	groups   GroupSource
	sender   PassSender
	logger   *slog.Logger

	retryQueue chan int64
	retryDelay time.Duration
}

func NewService(store Store, balances BalanceSource, groups GroupSource, sender PassSender, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		balances:   balances,
		groups:     groups,
		sender:     sender,
		logger:     logger,
		retryQueue: make(chan int64, 64),
		retryDelay: 30 * time.Second,
	}
}

// IssuePasses builds one pass per roster member showing what they owe
// and what they get back, and returns save URLs keyed by user ID. On
// partial failure the group is queued for a background retry and the
// error reports every member that failed.
func (s *Service) IssuePasses(ctx context.Context, groupID int64) (map[int64]string, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances, err := s.balances.ComputeBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	urls := make(map[int64]string, len(balances))
	var failures []error
	for _, b := range balances {
		data := PassData{
			UserID:    b.UserID,
			UserName:  b.Name,
			GroupName: g.Name,
			Owed:      owedAmount(b),
			GetBack:   getBackAmount(b),
		}

		url, err := s.issueOne(ctx, groupID, data)
		if err != nil {
			failures = append(failures, err)
			metrics.PassesIssued.WithLabelValues("failed").Inc()
			continue
		}
		urls[b.UserID] = url
		metrics.PassesIssued.WithLabelValues("issued").Inc()
	}

	if len(failures) > 0 {
		s.enqueueRetry(groupID)
		return urls, errors.Join(failures...)
	}
	return urls, nil
}

func (s *Service) issueOne(ctx context.Context, groupID int64, data PassData) (string, error) {
	objectID, err := s.sender.UpsertObject(ctx, data)
	if err != nil {
		s.recordStatus(ctx, groupID, data.UserID, "", "", PassStatusFailed)
		return "", err
	}
	url, err := s.sender.SaveURL(objectID)
	if err != nil {
		s.recordStatus(ctx, groupID, data.UserID, objectID, "", PassStatusFailed)
		return "", err
	}
	s.recordStatus(ctx, groupID, data.UserID, objectID, url, PassStatusIssued)
	return url, nil
}

// recordStatus is best-effort bookkeeping; a failed write must not turn
// a successful issuance into an error.
func (s *Service) recordStatus(ctx context.Context, groupID, userID int64, objectID, url, status string) {
	_, err := s.store.Upsert(ctx, &WalletPass{
		GroupID:  groupID,
		UserID:   userID,
		ObjectID: objectID,
		SaveURL:  url,
		Status:   status,
	})
	if err != nil {
		s.logger.Warn("failed to record wallet pass",
			"group_id", groupID, "user_id", userID, "error", err)
	}
}

// IssueReceiptPass creates a one-off receipt pass and returns its save
// URL. Receipts are not tracked in the pass table; they carry no group
// balance to refresh.
func (s *Service) IssueReceiptPass(ctx context.Context, data ReceiptData) (string, error) {
	if data.Currency == "" {
		data.Currency = "USD"
	}
	objectID, err := s.sender.CreateReceiptObject(ctx, data)
	if err != nil {
		metrics.PassesIssued.WithLabelValues("failed").Inc()
		return "", err
	}
	url, err := s.sender.SaveURL(objectID)
	if err != nil {
		metrics.PassesIssued.WithLabelValues("failed").Inc()
		return "", err
	}
	metrics.PassesIssued.WithLabelValues("issued").Inc()
	return url, nil
}

// ListByGroup returns the recorded passes for a group.
func (s *Service) ListByGroup(ctx context.Context, groupID int64) ([]*WalletPass, error) {
	return s.store.ListByGroup(ctx, groupID)
}

func (s *Service) enqueueRetry(groupID int64) {
	select {
	case s.retryQueue <- groupID:
	default:
		s.logger.Warn("pass retry queue full, dropping", "group_id", groupID)
	}
}

func owedAmount(b *balance.MemberBalance) float64 {
	if b.NetBalance < 0 {
		return -b.NetBalance
	}
	return 0
}

func getBackAmount(b *balance.MemberBalance) float64 {
	if b.NetBalance > 0 {
		return b.NetBalance
	}
	return 0
}

// StartRetryWorker consumes the retry queue until the context is
// cancelled. Each retry reissues the whole group; a failure requeues it
// after the delay.
func (s *Service) StartRetryWorker(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case groupID := <-s.retryQueue:
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.retryDelay):
				}

				if _, err := s.IssuePasses(ctx, groupID); err != nil {
					s.logger.Warn("pass retry failed", "group_id", groupID, "error", err)
					metrics.PassesIssued.WithLabelValues("retried").Inc()
					continue
				}
				s.logger.Info("pass retry succeeded", "group_id", groupID)
			}
		}
	}()
}
