package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"github.com/wheeldeal/wheeldeal-backend/internal/repository"
	"gorm.io/gorm"
)

var ErrTestDriveResolved = errors.New("test drive request was already answered")

type TestDriveService interface {
	Request(ctx context.Context, convID uint64, buyerUID string, proposedAt time.Time) (*model.TestDriveRequest, error)
	Respond(ctx context.Context, convID, requestID uint64, sellerUID string, confirm bool) (*model.TestDriveRequest, error)
}

type testDriveService struct {
	tdRepo   repository.TestDriveRepository
	convRepo repository.ConversationRepository
	notifier NotificationService
}

func NewTestDriveService(tdRepo repository.TestDriveRepository, convRepo repository.ConversationRepository, notifier NotificationService) TestDriveService {
	return &testDriveService{tdRepo: tdRepo, convRepo: convRepo, notifier: notifier}
}

func (s *testDriveService) thread(ctx context.Context, convID uint64) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cv, nil
}

// Request opens a scheduling request. Only the buyer proposes; the seller
// confirms or declines.
func (s *testDriveService) Request(ctx context.Context, convID uint64, buyerUID string, proposedAt time.Time) (*model.TestDriveRequest, error) {
	cv, err := s.thread(ctx, convID)
	if err != nil {
		return nil, err
	}
	if cv.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}
	if proposedAt.Before(time.Now()) {
		return nil, errors.New("proposed time must be in the future")
	}
	msg := &model.Message{
		ConversationID: convID,
		SenderUID:      buyerUID,
		Kind:           model.MessageKindTestDrive,
		Body:           fmt.Sprintf("Requested a test drive on %s", proposedAt.Format("2 Jan 2006 15:04")),
	}
	td := &model.TestDriveRequest{
		ConversationID: convID,
		SenderUID:      buyerUID,
		ProposedAt:     proposedAt,
		Status:         model.TestDriveStatusPending,
	}
	if err := s.tdRepo.CreateWithMessage(ctx, msg, td); err != nil {
		return nil, err
	}
	_ = s.convRepo.MarkRead(ctx, convID, buyerUID)
	s.notifier.Notify(ctx, cv.SellerUID, "test_drive_requested", "Test drive request", msg.Body, &cv.VehicleID, &convID, nil)
	return td, nil
}

func (s *testDriveService) Respond(ctx context.Context, convID, requestID uint64, sellerUID string, confirm bool) (*model.TestDriveRequest, error) {
	cv, err := s.thread(ctx, convID)
	if err != nil {
		return nil, err
	}
	if cv.SellerUID != sellerUID {
		return nil, ErrForbidden
	}
	td, err := s.tdRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if td.ConversationID != convID {
		return nil, ErrNotFound
	}
	if td.Status != model.TestDriveStatusPending {
		return nil, ErrTestDriveResolved
	}

	status := model.TestDriveStatusDeclined
	body := "Test drive request was declined"
	if confirm {
		status = model.TestDriveStatusConfirmed
		body = fmt.Sprintf("Test drive confirmed for %s", td.ProposedAt.Format("2 Jan 2006 15:04"))
	}
	rows, err := s.tdRepo.ResolveIfPending(ctx, td.ID, td.Revision, status)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrTestDriveResolved
	}
	td.Status = status
	td.Revision++

	_ = s.convRepo.AppendMessage(ctx, &model.Message{
		ConversationID: convID,
		SenderUID:      sellerUID,
		Kind:           model.MessageKindSystem,
		Body:           body,
	})
	_ = s.convRepo.MarkRead(ctx, convID, sellerUID)
	s.notifier.Notify(ctx, cv.BuyerUID, "test_drive_update", "Test drive", body, &cv.VehicleID, &convID, nil)
	return td, nil
}
