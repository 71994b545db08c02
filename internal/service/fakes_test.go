package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"github.com/wheeldeal/wheeldeal-backend/internal/repository"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the SQL guards that matter to the
// dispatcher, in particular the revision compare-and-set on offers.

type fakeConvRepo struct {
	convs     map[uint64]*model.Conversation
	msgs      []model.Message
	reads     map[string]time.Time
	nextMsgID uint64
	appendErr error
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: map[uint64]*model.Conversation{}, reads: map[string]time.Time{}}
}

func (f *fakeConvRepo) add(cv *model.Conversation) *model.Conversation {
	f.convs[cv.ID] = cv
	return cv
}

func (f *fakeConvRepo) FindOrCreate(ctx context.Context, vehicleID uint64, sellerUID, buyerUID string) (*model.Conversation, error) {
	for _, cv := range f.convs {
		if cv.VehicleID == vehicleID && cv.BuyerUID == buyerUID {
			return cv, nil
		}
	}
	cv := &model.Conversation{ID: uint64(len(f.convs) + 1), VehicleID: vehicleID, SellerUID: sellerUID, BuyerUID: buyerUID}
	return f.add(cv), nil
}

func (f *fakeConvRepo) FindByUser(ctx context.Context, uid string) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, cv := range f.convs {
		if cv.BuyerUID == uid || cv.SellerUID == uid {
			out = append(out, *cv)
		}
	}
	return out, nil
}

func (f *fakeConvRepo) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	cv, ok := f.convs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cv, nil
}

func (f *fakeConvRepo) AppendMessage(ctx context.Context, msg *model.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.nextMsgID++
	msg.ID = f.nextMsgID
	msg.CreatedAt = time.Now()
	f.msgs = append(f.msgs, *msg)
	return nil
}

func (f *fakeConvRepo) ListMessages(ctx context.Context, convID uint64) ([]model.Message, error) {
	var out []model.Message
	for _, m := range f.msgs {
		if m.ConversationID == convID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeConvRepo) Flag(ctx context.Context, id uint64, reason string) error {
	cv, ok := f.convs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cv.Flagged = true
	cv.FlagReason = &reason
	return nil
}

func (f *fakeConvRepo) MarkRead(ctx context.Context, convID uint64, uid string) error {
	f.reads[fmt.Sprintf("%d:%s", convID, uid)] = time.Now()
	return nil
}

func (f *fakeConvRepo) HasUnread(ctx context.Context, convID uint64, uid string) (bool, error) {
	last := f.reads[fmt.Sprintf("%d:%s", convID, uid)]
	for _, m := range f.msgs {
		if m.ConversationID == convID && m.SenderUID != uid && m.CreatedAt.After(last) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConvRepo) SetDB(db *gorm.DB) {}

type fakeOfferRepo struct {
	conv   *fakeConvRepo
	offers map[uint64]*model.Offer
	nextID uint64
}

func newFakeOfferRepo(conv *fakeConvRepo) *fakeOfferRepo {
	return &fakeOfferRepo{conv: conv, offers: map[uint64]*model.Offer{}}
}

func (f *fakeOfferRepo) CreateWithMessage(ctx context.Context, msg *model.Message, off *model.Offer) error {
	if err := f.conv.AppendMessage(ctx, msg); err != nil {
		return err
	}
	f.nextID++
	off.ID = f.nextID
	off.MessageID = msg.ID
	f.offers[off.ID] = off
	return nil
}

func (f *fakeOfferRepo) FindByID(ctx context.Context, id uint64) (*model.Offer, error) {
	off, ok := f.offers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *off
	return &cp, nil
}

func (f *fakeOfferRepo) LatestByConversation(ctx context.Context, convID uint64) (*model.Offer, error) {
	var latest *model.Offer
	for _, off := range f.offers {
		if off.ConversationID == convID && (latest == nil || off.ID > latest.ID) {
			latest = off
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeOfferRepo) PendingByConversation(ctx context.Context, convID uint64) (*model.Offer, error) {
	for _, off := range f.offers {
		if off.ConversationID == convID && off.Status == model.OfferStatusPending {
			cp := *off
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOfferRepo) ResolveIfPending(ctx context.Context, id uint64, revision int, status model.OfferStatus, dealCode string) (int64, error) {
	off, ok := f.offers[id]
	if !ok || off.Status != model.OfferStatusPending || off.Revision != revision {
		return 0, nil
	}
	off.Status = status
	off.Revision = revision + 1
	if dealCode != "" {
		off.DealCode = dealCode
	}
	return 1, nil
}

func (f *fakeOfferRepo) Counter(ctx context.Context, prev *model.Offer, msg *model.Message, next *model.Offer) error {
	stored, ok := f.offers[prev.ID]
	if !ok || stored.Status != model.OfferStatusPending || stored.Revision != prev.Revision {
		return repository.ErrStaleOffer
	}
	stored.Status = model.OfferStatusCountered
	stored.Revision = prev.Revision + 1
	if err := f.conv.AppendMessage(ctx, msg); err != nil {
		return err
	}
	f.nextID++
	next.ID = f.nextID
	next.MessageID = msg.ID
	f.offers[next.ID] = next
	return nil
}

func (f *fakeOfferRepo) SetDB(db *gorm.DB) {}

type fakeVehicleRepo struct {
	vehicles map[uint64]*model.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: map[uint64]*model.Vehicle{}}
}

func (f *fakeVehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	v.ID = uint64(len(f.vehicles) + 1)
	f.vehicles[v.ID] = v
	return nil
}

func (f *fakeVehicleRepo) FindByID(ctx context.Context, id uint64) (*model.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (f *fakeVehicleRepo) List(ctx context.Context, limit, offset int, city string) ([]model.Vehicle, int64, error) {
	var out []model.Vehicle
	for _, v := range f.vehicles {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (f *fakeVehicleRepo) ListBySeller(ctx context.Context, sellerUID string) ([]model.Vehicle, error) {
	var out []model.Vehicle
	for _, v := range f.vehicles {
		if v.SellerUID == sellerUID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVehicleRepo) UpdateStatus(ctx context.Context, id uint64, status model.VehicleStatus) error {
	v, ok := f.vehicles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Status = status
	return nil
}

func (f *fakeVehicleRepo) UpdatePhotoURL(ctx context.Context, id uint64, photoURL string) error {
	v, ok := f.vehicles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.PhotoURL = &photoURL
	return nil
}

func (f *fakeVehicleRepo) SetDB(db *gorm.DB) {}

type fakeTestDriveRepo struct {
	conv     *fakeConvRepo
	requests map[uint64]*model.TestDriveRequest
	nextID   uint64
}

func newFakeTestDriveRepo(conv *fakeConvRepo) *fakeTestDriveRepo {
	return &fakeTestDriveRepo{conv: conv, requests: map[uint64]*model.TestDriveRequest{}}
}

func (f *fakeTestDriveRepo) CreateWithMessage(ctx context.Context, msg *model.Message, td *model.TestDriveRequest) error {
	if err := f.conv.AppendMessage(ctx, msg); err != nil {
		return err
	}
	f.nextID++
	td.ID = f.nextID
	td.MessageID = msg.ID
	f.requests[td.ID] = td
	return nil
}

func (f *fakeTestDriveRepo) FindByID(ctx context.Context, id uint64) (*model.TestDriveRequest, error) {
	td, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *td
	return &cp, nil
}

func (f *fakeTestDriveRepo) ResolveIfPending(ctx context.Context, id uint64, revision int, status model.TestDriveStatus) (int64, error) {
	td, ok := f.requests[id]
	if !ok || td.Status != model.TestDriveStatusPending || td.Revision != revision {
		return 0, nil
	}
	td.Status = status
	td.Revision = revision + 1
	return 1, nil
}

func (f *fakeTestDriveRepo) SetDB(db *gorm.DB) {}

type sentNotification struct {
	UserUID string
	Type    string
}

type fakeNotifier struct {
	sent []sentNotification
}

func (f *fakeNotifier) Notify(ctx context.Context, userUID, typ, title, body string, vehicleID, convID, offerID *uint64) {
	f.sent = append(f.sent, sentNotification{UserUID: userUID, Type: typ})
}

func (f *fakeNotifier) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotifier) MarkAllRead(ctx context.Context, userUID string) error {
	return nil
}
