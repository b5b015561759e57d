package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// fakeStore is an in-memory GroupStore and PaymentStore
type fakeStore struct {
	mu          sync.Mutex
	groups      map[int64]*models.Group
	failGroups  map[int64]error
	memberships map[int64][]models.GroupRef
	payments    map[int64]*models.Payment
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups:      map[int64]*models.Group{},
		failGroups:  map[int64]error{},
		memberships: map[int64][]models.GroupRef{},
		payments:    map[int64]*models.Payment{},
		nextID:      100,
	}
}

func (f *fakeStore) addGroup(group *models.Group) {
	f.groups[group.ID] = group
	for _, member := range group.Members {
		f.memberships[member.ID] = append(f.memberships[member.ID], models.GroupRef{ID: group.ID, Name: group.Name})
	}
}

func (f *fakeStore) GetGroupSnapshot(ctx context.Context, groupID int64) (*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failGroups[groupID]; ok {
		return nil, err
	}
	group, ok := f.groups[groupID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	copied := *group
	copied.PendingPayments = nil
	copied.ConfirmedPayments = nil
	copied.PendingPayments = append(copied.PendingPayments, group.PendingPayments...)
	copied.ConfirmedPayments = append(copied.ConfirmedPayments, group.ConfirmedPayments...)
	for _, payment := range f.payments {
		if payment.GroupID != groupID {
			continue
		}
		if payment.Confirmed {
			copied.ConfirmedPayments = append(copied.ConfirmedPayments, *payment)
		} else {
			copied.PendingPayments = append(copied.PendingPayments, *payment)
		}
	}
	return &copied, nil
}

func (f *fakeStore) ListGroupsForMember(ctx context.Context, memberID int64) ([]models.GroupRef, error) {
	return f.memberships[memberID], nil
}

func (f *fakeStore) CreateGroup(ctx context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.groups[f.nextID] = &models.Group{ID: f.nextID, Name: name}
	return f.nextID, nil
}

func (f *fakeStore) CreateMember(ctx context.Context, name, email string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID, nil
}

func (f *fakeStore) AddGroupMember(ctx context.Context, groupID, memberID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	group, ok := f.groups[groupID]
	if !ok {
		return utils.ErrNotFound
	}
	group.Members = append(group.Members, models.Member{ID: memberID, Name: fmt.Sprintf("m%d", memberID)})
	return nil
}

func (f *fakeStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	expense.ID = f.nextID
	group := f.groups[expense.GroupID]
	group.Expenses = append(group.Expenses, *expense)
	return nil
}

func (f *fakeStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	payment.ID = f.nextID
	stored := *payment
	f.payments[payment.ID] = &stored
	return nil
}

func (f *fakeStore) GetPaymentByID(ctx context.Context, paymentID int64) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakeStore) ConfirmPayment(ctx context.Context, paymentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok {
		return utils.ErrNotFound
	}
	if payment.Confirmed {
		return utils.ErrConflict
	}
	payment.Confirmed = true
	return nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishGroupChanged(ctx context.Context, groupID int64, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, fmt.Sprintf("%d:%s", groupID, reason))
	return nil
}

func balances(entries ...models.MemberBalance) models.BalanceMap {
	return models.BalanceMap(entries)
}

func mb(memberID int64, balance float64) models.MemberBalance {
	return models.MemberBalance{MemberID: memberID, Balance: balance}
}

func ptr(v float64) *float64 {
	return &v
}
