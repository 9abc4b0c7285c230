package moneyrequest_test

import (
	"context"
	"testing"
	"time"

	appErrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/services/moneyrequest"
	"kosh/internal/services/pin"
	"kosh/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPin = "2468"

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	svc       moneyrequest.Service
	requester *models.Wallet
	payer     *models.Wallet
}

func newFixture(t *testing.T, payerBalance int64) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := repositories.NewStore(db)
	pins := pin.NewService(store, nil, pin.WithBcryptCost(bcrypt.MinCost))

	f := &fixture{
		db:        db,
		svc:       moneyrequest.NewService(store, pins, nil, moneyrequest.WithClock(func() time.Time { return fixedNow })),
		requester: testutil.NewWallet(t, db, "req@example.com", 0),
		payer:     testutil.NewWallet(t, db, "payer@example.com", payerBalance),
	}
	require.NoError(t, pins.SetPin(context.Background(), f.payer.UserID, testPin))
	return f
}

func (f *fixture) create(t *testing.T, amount int64) *models.MoneyRequest {
	t.Helper()
	mr, err := f.svc.Create(context.Background(), testutil.Caller(f.requester), moneyrequest.CreateRequest{
		To: "payer@example.com", Amount: amount, Note: "dinner",
	})
	require.NoError(t, err)
	return mr
}

func (f *fixture) reload(t *testing.T, requestID string) models.MoneyRequest {
	t.Helper()
	var mr models.MoneyRequest
	require.NoError(t, f.db.Where("request_id = ?", requestID).First(&mr).Error)
	return mr
}

func (f *fixture) entryCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&n).Error)
	return n
}

func TestCreate(t *testing.T) {
	f := newFixture(t, 0)
	mr := f.create(t, 300)

	assert.Regexp(t, `^REQ[0-9A-F]{12}$`, mr.RequestID)
	assert.Equal(t, models.MoneyRequestPending, mr.Status)
	assert.Equal(t, f.requester.ID, mr.FromWalletID)
	assert.Equal(t, f.payer.ID, mr.ToWalletID)
	assert.Nil(t, mr.RespondedAt)
	assert.Zero(t, f.entryCount(t))
}

func TestCreate_Failures(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	caller := testutil.Caller(f.requester)

	_, err := f.svc.Create(ctx, caller, moneyrequest.CreateRequest{To: "req@example.com", Amount: 10})
	assert.ErrorIs(t, err, appErrors.ErrSelfRequest)

	_, err = f.svc.Create(ctx, caller, moneyrequest.CreateRequest{To: f.requester.WalletID, Amount: 10})
	assert.ErrorIs(t, err, appErrors.ErrSelfRequest)

	_, err = f.svc.Create(ctx, caller, moneyrequest.CreateRequest{To: "ghost@example.com", Amount: 10})
	assert.ErrorIs(t, err, appErrors.ErrRecipientNotFound)

	_, err = f.svc.Create(ctx, caller, moneyrequest.CreateRequest{To: "payer@example.com", Amount: 0})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Create(ctx, caller, moneyrequest.CreateRequest{Amount: 10})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestList(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	first := f.create(t, 100)
	second := f.create(t, 200)

	forPayer, err := f.svc.List(ctx, testutil.Caller(f.payer))
	require.NoError(t, err)
	require.Len(t, forPayer.Incoming, 2)
	assert.Empty(t, forPayer.Outgoing)
	assert.Equal(t, second.RequestID, forPayer.Incoming[0].RequestID)
	assert.Equal(t, first.RequestID, forPayer.Incoming[1].RequestID)

	forRequester, err := f.svc.List(ctx, testutil.Caller(f.requester))
	require.NoError(t, err)
	assert.Empty(t, forRequester.Incoming)
	assert.Len(t, forRequester.Outgoing, 2)

	require.NoError(t, f.svc.Reject(ctx, testutil.Caller(f.payer), first.RequestID))
	forPayer, err = f.svc.List(ctx, testutil.Caller(f.payer))
	require.NoError(t, err)
	assert.Len(t, forPayer.Incoming, 1)
}

func TestReject(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()
	mr := f.create(t, 100)

	// Only the addressee may respond.
	err := f.svc.Reject(ctx, testutil.Caller(f.requester), mr.RequestID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequestState)

	require.NoError(t, f.svc.Reject(ctx, testutil.Caller(f.payer), mr.RequestID))
	stored := f.reload(t, mr.RequestID)
	assert.Equal(t, models.MoneyRequestRejected, stored.Status)
	require.NotNil(t, stored.RespondedAt)
	assert.True(t, fixedNow.Equal(*stored.RespondedAt))

	err = f.svc.Reject(ctx, testutil.Caller(f.payer), mr.RequestID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequestState)

	err = f.svc.Accept(ctx, testutil.Caller(f.payer), mr.RequestID, testPin)
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequestState)

	assert.Equal(t, int64(500), testutil.Balance(t, f.db, f.payer.ID))
	assert.Zero(t, f.entryCount(t))

	err = f.svc.Reject(ctx, testutil.Caller(f.payer), "REQ000000000000")
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequestState)
}

func TestAccept(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()
	mr := f.create(t, 200)

	require.NoError(t, f.svc.Accept(ctx, testutil.Caller(f.payer), mr.RequestID, testPin))

	assert.Equal(t, int64(300), testutil.Balance(t, f.db, f.payer.ID))
	assert.Equal(t, int64(200), testutil.Balance(t, f.db, f.requester.ID))

	stored := f.reload(t, mr.RequestID)
	assert.Equal(t, models.MoneyRequestAccepted, stored.Status)
	require.NotNil(t, stored.RespondedAt)

	var rows []models.Transaction
	require.NoError(t, f.db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, models.TransactionTypeDebit, rows[0].Type)
	assert.Equal(t, f.payer.ID, rows[0].WalletID)
	assert.Equal(t, models.TransactionTypeCredit, rows[1].Type)
	assert.Equal(t, f.requester.ID, rows[1].WalletID)
	assert.Equal(t, "money-request-"+mr.RequestID, rows[0].IdempotencyKey)
	assert.Equal(t, rows[0].IdempotencyKey, rows[1].IdempotencyKey)
	assert.Equal(t, *rows[0].ReferenceID, *rows[1].ReferenceID)

	// A retried accept cannot move the money again.
	err := f.svc.Accept(ctx, testutil.Caller(f.payer), mr.RequestID, testPin)
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequestState)
	assert.Equal(t, int64(300), testutil.Balance(t, f.db, f.payer.ID))
	assert.Equal(t, int64(2), f.entryCount(t))
}

func TestAccept_InsufficientFundsKeepsPending(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	mr := f.create(t, 150)

	err := f.svc.Accept(ctx, testutil.Caller(f.payer), mr.RequestID, testPin)
	assert.ErrorIs(t, err, appErrors.ErrInsufficientFunds)

	stored := f.reload(t, mr.RequestID)
	assert.Equal(t, models.MoneyRequestPending, stored.Status)
	assert.Nil(t, stored.RespondedAt)
	assert.Equal(t, int64(100), testutil.Balance(t, f.db, f.payer.ID))
	assert.Zero(t, f.entryCount(t))

	// Once funded, the same request can still be paid.
	require.NoError(t, f.db.Model(&models.Wallet{}).Where("id = ?", f.payer.ID).Update("balance", 150).Error)
	require.NoError(t, f.svc.Accept(ctx, testutil.Caller(f.payer), mr.RequestID, testPin))
	assert.Equal(t, int64(0), testutil.Balance(t, f.db, f.payer.ID))
}

func TestAccept_WrongPin(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()
	mr := f.create(t, 100)

	err := f.svc.Accept(ctx, testutil.Caller(f.payer), mr.RequestID, "0000")
	assert.ErrorIs(t, err, appErrors.ErrPinInvalid)
	assert.Equal(t, models.MoneyRequestPending, f.reload(t, mr.RequestID).Status)
	assert.Zero(t, f.entryCount(t))
}

func TestRespond(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()

	_, err := f.svc.Respond(ctx, testutil.Caller(f.payer), "REQ000000000000", "MAYBE", "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	accepted := f.create(t, 50)
	status, err := f.svc.Respond(ctx, testutil.Caller(f.payer), accepted.RequestID, moneyrequest.ActionAccept, testPin)
	require.NoError(t, err)
	assert.Equal(t, models.MoneyRequestAccepted, status)

	rejected := f.create(t, 50)
	status, err = f.svc.Respond(ctx, testutil.Caller(f.payer), rejected.RequestID, moneyrequest.ActionReject, "")
	require.NoError(t, err)
	assert.Equal(t, models.MoneyRequestRejected, status)
}
