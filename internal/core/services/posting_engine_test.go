package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledgerbook/internal/core/ports/services"
	"github.com/SscSPs/ledgerbook/internal/core/services"
	"github.com/SscSPs/ledgerbook/internal/dto"
	"github.com/SscSPs/ledgerbook/internal/repositories/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgerFixture wires the real services to an in-memory store.
type ledgerFixture struct {
	store    *memory.Store
	accounts portssvc.AccountSvcFacade
	journals portssvc.JournalSvcFacade
	reports  portssvc.ReportingService
	actor    domain.Actor
}

var fixtureNow = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Provider()
	clock := services.WithClock(func() time.Time { return fixtureNow })
	return &ledgerFixture{
		store:    store,
		accounts: services.NewAccountService(repos.AccountRepo, repos.TxManager, clock),
		journals: services.NewJournalService(repos.AccountRepo, repos.JournalRepo, repos.TxManager, clock),
		reports:  services.NewReportingService(repos.AccountRepo, repos.ReportingRepo, clock),
		actor:    domain.Actor{ID: "accountant-1", Role: domain.RoleAccountant},
	}
}

var defaultSubTypes = map[domain.AccountType]domain.AccountSubType{
	domain.Asset:     domain.CurrentAsset,
	domain.Liability: domain.CurrentLiability,
	domain.Equity:    domain.OwnerEquity,
	domain.Income:    domain.Revenue,
	domain.Expense:   domain.OperatingExpense,
}

func (f *ledgerFixture) account(t *testing.T, code string, accType domain.AccountType) domain.Account {
	t.Helper()
	acc, err := f.accounts.CreateAccount(context.Background(), dto.CreateAccountRequest{
		Code:        code,
		Name:        "Account " + code,
		AccountType: accType,
		SubType:     defaultSubTypes[accType],
	}, f.actor)
	require.NoError(t, err)
	return *acc
}

func ln(accountID, debit, credit string) dto.JournalLineRequest {
	l := dto.JournalLineRequest{AccountID: accountID, DebitAmount: decimal.Zero, CreditAmount: decimal.Zero}
	if debit != "" {
		l.DebitAmount = decimal.RequireFromString(debit)
	}
	if credit != "" {
		l.CreditAmount = decimal.RequireFromString(credit)
	}
	return l
}

func (f *ledgerFixture) draft(t *testing.T, date string, lines ...dto.JournalLineRequest) *domain.JournalEntry {
	t.Helper()
	j, err := f.journals.CreateJournal(context.Background(), dto.CreateJournalRequest{
		Date:      date,
		Narration: "test entry",
		Lines:     lines,
	}, f.actor)
	require.NoError(t, err)
	return j
}

func (f *ledgerFixture) post(t *testing.T, date string, lines ...dto.JournalLineRequest) *domain.JournalEntry {
	t.Helper()
	j := f.draft(t, date, lines...)
	posted, err := f.journals.PostJournal(context.Background(), j.JournalID, f.actor)
	require.NoError(t, err)
	return posted
}

func (f *ledgerFixture) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	acc, err := f.accounts.GetAccountByID(context.Background(), accountID, f.actor)
	require.NoError(t, err)
	return acc.Balance
}

// insertDraft stores a draft directly, bypassing create-time validation.
func (f *ledgerFixture) insertDraft(t *testing.T, lines ...domain.JournalLine) domain.JournalEntry {
	t.Helper()
	j := domain.JournalEntry{
		JournalID: uuid.NewString(),
		Date:      fixtureNow,
		Narration: "inserted",
		Status:    domain.JournalDraft,
		Lines:     lines,
	}
	err := f.store.WithTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		seq, err := tx.NextJournalSequence(ctx)
		if err != nil {
			return err
		}
		j.Sequence = seq
		j.JournalNumber = domain.DefaultLedgerSettings().FormatJournalNumber(seq)
		j.RecalculateTotals()
		return tx.InsertJournal(ctx, j)
	})
	require.NoError(t, err)
	return j
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("want %s, got %s", want, got), msgAndArgs...)
	}
}

func TestPostJournal_CashInvestment(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)

	j := f.draft(t, "2024-03-01", ln(cash.AccountID, "1000", ""), ln(capital.AccountID, "", "1000"))
	assert.Equal(t, "JE000001", j.JournalNumber)
	assert.Equal(t, domain.JournalDraft, j.Status)

	posted, err := f.journals.PostJournal(context.Background(), j.JournalID, f.actor)
	require.NoError(t, err)

	assert.Equal(t, domain.JournalPosted, posted.Status)
	require.NotNil(t, posted.PostedAt)
	assert.True(t, fixtureNow.Equal(*posted.PostedAt))
	assert.Equal(t, f.actor.ID, posted.PostedBy)
	assertDecimal(t, "1000", f.balance(t, cash.AccountID))
	assertDecimal(t, "1000", f.balance(t, capital.AccountID))

	tb, err := f.reports.GetTrialBalance(context.Background(), fixtureNow, domain.TrialBalanceFilter{}, f.actor)
	require.NoError(t, err)
	assertDecimal(t, "1000", tb.TotalDebits)
	assertDecimal(t, "1000", tb.TotalCredits)
	assert.True(t, tb.IsBalanced)
}

func TestCreateJournal_RejectsUnbalanced(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)

	_, err := f.journals.CreateJournal(context.Background(), dto.CreateJournalRequest{
		Date:      "2024-03-01",
		Narration: "short",
		Lines:     []dto.JournalLineRequest{ln(cash.AccountID, "500", ""), ln(capital.AccountID, "", "400")},
	}, f.actor)

	assert.ErrorIs(t, err, apperrors.ErrIntegrity)
	assert.Equal(t, apperrors.CodeUnbalanced, apperrors.CodeOf(err))
}

func TestPostJournal_UnbalancedDraftStaysDraft(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)

	j := f.insertDraft(t,
		domain.JournalLine{AccountID: cash.AccountID, DebitAmount: dec("500"), CreditAmount: decimal.Zero},
		domain.JournalLine{AccountID: capital.AccountID, DebitAmount: decimal.Zero, CreditAmount: dec("400")},
	)

	_, err := f.journals.PostJournal(context.Background(), j.JournalID, f.actor)
	assert.ErrorIs(t, err, apperrors.ErrIntegrity)
	assert.Equal(t, apperrors.CodeUnbalanced, apperrors.CodeOf(err))

	got, err := f.journals.GetJournal(context.Background(), j.JournalID, f.actor)
	require.NoError(t, err)
	assert.Equal(t, domain.JournalDraft, got.Status)
	assert.Nil(t, got.PostedAt)
	assertDecimal(t, "0", f.balance(t, cash.AccountID))
	assertDecimal(t, "0", f.balance(t, capital.AccountID))
}

func TestReverseJournal_RestoresBalances(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)
	original := f.post(t, "2024-03-01", ln(cash.AccountID, "1000", ""), ln(capital.AccountID, "", "1000"))

	reversal, err := f.journals.ReverseJournal(context.Background(), original.JournalID, dto.ReverseJournalRequest{}, f.actor)
	require.NoError(t, err)

	assert.Equal(t, domain.JournalPosted, reversal.Status)
	assert.Equal(t, original.JournalID, reversal.OriginalEntryID)
	assert.Equal(t, original.JournalNumber, reversal.Reference)
	assert.Equal(t, "Reversal: test entry", reversal.Narration)
	assert.Equal(t, "2024-03-31", reversal.Date.Format(dto.DateLayout), "defaults to today")
	require.Len(t, reversal.Lines, 2)
	assertDecimal(t, "1000", reversal.Lines[0].CreditAmount)
	assertDecimal(t, "1000", reversal.Lines[1].DebitAmount)

	assertDecimal(t, "0", f.balance(t, cash.AccountID))
	assertDecimal(t, "0", f.balance(t, capital.AccountID))

	got, err := f.journals.GetJournal(context.Background(), original.JournalID, f.actor)
	require.NoError(t, err)
	assert.Equal(t, domain.JournalReversed, got.Status)
	assert.Equal(t, reversal.JournalID, got.ReversalEntryID)
}

func TestReverseJournal_Rejections(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)

	draft := f.draft(t, "2024-03-01", ln(cash.AccountID, "10", ""), ln(capital.AccountID, "", "10"))
	_, err := f.journals.ReverseJournal(ctx, draft.JournalID, dto.ReverseJournalRequest{}, f.actor)
	assert.Equal(t, apperrors.CodeNotPosted, apperrors.CodeOf(err))

	original := f.post(t, "2024-03-02", ln(cash.AccountID, "20", ""), ln(capital.AccountID, "", "20"))
	reversal, err := f.journals.ReverseJournal(ctx, original.JournalID, dto.ReverseJournalRequest{Narration: "typo", Date: "2024-03-05"}, f.actor)
	require.NoError(t, err)
	assert.Equal(t, "Reversal: typo", reversal.Narration)

	_, err = f.journals.ReverseJournal(ctx, original.JournalID, dto.ReverseJournalRequest{}, f.actor)
	assert.ErrorIs(t, err, apperrors.ErrNotPosted, "an entry is reversed at most once")

	_, err = f.journals.ReverseJournal(ctx, reversal.JournalID, dto.ReverseJournalRequest{}, f.actor)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, apperrors.CodeReversalNotReversible, apperrors.CodeOf(err))

	_, err = f.journals.ReverseJournal(ctx, uuid.NewString(), dto.ReverseJournalRequest{}, f.actor)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assertDecimal(t, "0", f.balance(t, cash.AccountID))
}

func TestReverseJournal_TouchesInactiveAccount(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)
	original := f.post(t, "2024-03-01", ln(cash.AccountID, "75", ""), ln(capital.AccountID, "", "75"))

	require.NoError(t, f.accounts.DeactivateAccount(ctx, capital.AccountID, f.actor))

	_, err := f.journals.ReverseJournal(ctx, original.JournalID, dto.ReverseJournalRequest{}, f.actor)
	require.NoError(t, err)
	assertDecimal(t, "0", f.balance(t, capital.AccountID))
}

// Every successful post moves debit and credit columns by the same amount.
func TestPostJournal_BalanceInvariant(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "1001", domain.Asset)
	bank := f.account(t, "1002", domain.Asset)
	payable := f.account(t, "2001", domain.Liability)
	capital := f.account(t, "3001", domain.Equity)
	sales := f.account(t, "4001", domain.Income)
	rent := f.account(t, "5001", domain.Expense)

	entries := [][]dto.JournalLineRequest{
		{ln(cash.AccountID, "1000", ""), ln(capital.AccountID, "", "1000")},
		{ln(bank.AccountID, "250.50", ""), ln(sales.AccountID, "", "250.50")},
		{ln(rent.AccountID, "300", ""), ln(cash.AccountID, "", "200"), ln(payable.AccountID, "", "100")},
		{ln(payable.AccountID, "100", ""), ln(bank.AccountID, "", "100")},
	}

	accountIDs := []string{cash.AccountID, bank.AccountID, payable.AccountID, capital.AccountID, sales.AccountID, rent.AccountID}
	for i, lines := range entries {
		f.post(t, "2024-03-10", lines...)

		// Net debit-normal balances equal net credit-normal balances after every post.
		debitSide, creditSide := decimal.Zero, decimal.Zero
		for _, id := range accountIDs {
			acc, err := f.accounts.GetAccountByID(context.Background(), id, f.actor)
			require.NoError(t, err)
			if acc.AccountType.NormalSide() == domain.DebitSide {
				debitSide = debitSide.Add(acc.Balance)
			} else {
				creditSide = creditSide.Add(acc.Balance)
			}
		}
		assert.True(t, debitSide.Equal(creditSide), "after entry %d: debit side %s, credit side %s", i+1, debitSide, creditSide)
	}

	assertDecimal(t, "800", f.balance(t, cash.AccountID))
	assertDecimal(t, "150.50", f.balance(t, bank.AccountID))
	assertDecimal(t, "0", f.balance(t, payable.AccountID))
	assertDecimal(t, "300", f.balance(t, rent.AccountID))
}

// A line referencing a missing or inactive account leaves earlier accounts untouched.
func TestPostJournal_AtomicOnAccountFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *ledgerFixture, third domain.Account) string
		code  string
	}{
		{
			name: "missing account",
			setup: func(t *testing.T, f *ledgerFixture, third domain.Account) string {
				return uuid.NewString()
			},
			code: apperrors.CodeAccountNotFound,
		},
		{
			name: "inactive account",
			setup: func(t *testing.T, f *ledgerFixture, third domain.Account) string {
				require.NoError(t, f.accounts.DeactivateAccount(context.Background(), third.AccountID, f.actor))
				return third.AccountID
			},
			code: apperrors.CodeInactiveAccount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t)
			cash := f.account(t, "1001", domain.Asset)
			bank := f.account(t, "1002", domain.Asset)
			third := f.account(t, "3001", domain.Equity)
			f.post(t, "2024-03-01", ln(cash.AccountID, "40", ""), ln(third.AccountID, "", "40"))

			badID := tt.setup(t, f, third)
			j := f.insertDraft(t,
				domain.JournalLine{AccountID: cash.AccountID, DebitAmount: dec("10"), CreditAmount: decimal.Zero},
				domain.JournalLine{AccountID: bank.AccountID, DebitAmount: dec("5"), CreditAmount: decimal.Zero},
				domain.JournalLine{AccountID: badID, DebitAmount: decimal.Zero, CreditAmount: dec("15")},
			)

			_, err := f.journals.PostJournal(context.Background(), j.JournalID, f.actor)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))

			assertDecimal(t, "40", f.balance(t, cash.AccountID))
			assertDecimal(t, "0", f.balance(t, bank.AccountID))
			got, err := f.journals.GetJournal(context.Background(), j.JournalID, f.actor)
			require.NoError(t, err)
			assert.Equal(t, domain.JournalDraft, got.Status)
		})
	}
}

// Posting twice fails with NOT_DRAFT and does not apply the deltas again.
func TestPostJournal_Twice(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)
	posted := f.post(t, "2024-03-01", ln(cash.AccountID, "1000", ""), ln(capital.AccountID, "", "1000"))

	_, err := f.journals.PostJournal(context.Background(), posted.JournalID, f.actor)
	assert.ErrorIs(t, err, apperrors.ErrNotDraft)
	assertDecimal(t, "1000", f.balance(t, cash.AccountID))
	assertDecimal(t, "1000", f.balance(t, capital.AccountID))
}

// Reversing any posted entry nets every touched account back to its prior balance.
func TestReverseJournal_NetsToPrePostingBalances(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)
	sales := f.account(t, "4001", domain.Income)
	cogs := f.account(t, "5001", domain.Expense)
	f.post(t, "2024-03-01", ln(cash.AccountID, "500", ""), ln(capital.AccountID, "", "500"))

	before := map[string]decimal.Decimal{}
	for _, id := range []string{cash.AccountID, capital.AccountID, sales.AccountID, cogs.AccountID} {
		before[id] = f.balance(t, id)
	}

	entry := f.post(t, "2024-03-02",
		ln(cash.AccountID, "120", ""),
		ln(cogs.AccountID, "30", ""),
		ln(sales.AccountID, "", "120"),
		ln(cash.AccountID, "", "30"),
	)
	_, err := f.journals.ReverseJournal(context.Background(), entry.JournalID, dto.ReverseJournalRequest{}, f.actor)
	require.NoError(t, err)

	for id, want := range before {
		assertDecimal(t, want.String(), f.balance(t, id), "account %s", id)
	}
}

func TestDraftLifecycle(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)

	first := f.draft(t, "2024-03-01", ln(cash.AccountID, "10", ""), ln(capital.AccountID, "", "10"))
	updated, err := f.journals.UpdateJournal(ctx, first.JournalID, dto.UpdateJournalRequest{
		Date:      "2024-03-02",
		Narration: "corrected",
		Lines:     []dto.JournalLineRequest{ln(cash.AccountID, "12.50", ""), ln(capital.AccountID, "", "12.50")},
	}, f.actor)
	require.NoError(t, err)
	assert.Equal(t, first.JournalNumber, updated.JournalNumber)
	assertDecimal(t, "12.50", updated.TotalDebit)
	assert.Equal(t, "1001", updated.Lines[0].AccountCode, "line snapshots the account code")

	require.NoError(t, f.journals.DeleteJournal(ctx, first.JournalID, f.actor))
	_, err = f.journals.GetJournal(ctx, first.JournalID, f.actor)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	second := f.draft(t, "2024-03-03", ln(cash.AccountID, "1", ""), ln(capital.AccountID, "", "1"))
	assert.Equal(t, "JE000002", second.JournalNumber, "deleted numbers are not reused")

	_, err = f.journals.PostJournal(ctx, second.JournalID, f.actor)
	require.NoError(t, err)
	_, err = f.journals.UpdateJournal(ctx, second.JournalID, dto.UpdateJournalRequest{
		Date:  "2024-03-03", Narration: "late edit",
		Lines: []dto.JournalLineRequest{ln(cash.AccountID, "2", ""), ln(capital.AccountID, "", "2")},
	}, f.actor)
	assert.ErrorIs(t, err, apperrors.ErrNotDraft)
	assert.ErrorIs(t, f.journals.DeleteJournal(ctx, second.JournalID, f.actor), apperrors.ErrNotDraft)
}

func TestUpdateJournal_NotDraftWinsOverPayloadErrors(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)
	posted := f.post(t, "2024-03-01", ln(cash.AccountID, "5", ""), ln(capital.AccountID, "", "5"))

	payloads := map[string]dto.UpdateJournalRequest{
		"unbalanced": {Date: "2024-03-01", Narration: "edit", Lines: []dto.JournalLineRequest{
			ln(cash.AccountID, "5", ""), ln(capital.AccountID, "", "4"),
		}},
		"unknown account": {Date: "2024-03-01", Narration: "edit", Lines: []dto.JournalLineRequest{
			ln("missing", "5", ""), ln(capital.AccountID, "", "5"),
		}},
		"bad date": {Date: "01/03/2024", Narration: "edit", Lines: []dto.JournalLineRequest{
			ln(cash.AccountID, "5", ""), ln(capital.AccountID, "", "5"),
		}},
		"no lines": {Date: "2024-03-01", Narration: "edit"},
	}
	for name, req := range payloads {
		_, err := f.journals.UpdateJournal(ctx, posted.JournalID, req, f.actor)
		assert.ErrorIs(t, err, apperrors.ErrNotDraft, name)
	}

	_, err := f.journals.UpdateJournal(ctx, "missing", payloads["unbalanced"], f.actor)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateJournal_LineValidation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)
	closed := f.account(t, "3002", domain.Equity)
	require.NoError(t, f.accounts.DeactivateAccount(ctx, closed.AccountID, f.actor))

	tests := []struct {
		name  string
		lines []dto.JournalLineRequest
		code  string
	}{
		{"one line", []dto.JournalLineRequest{ln(cash.AccountID, "10", "")}, apperrors.CodeTooFewLines},
		{"both sides", []dto.JournalLineRequest{ln(cash.AccountID, "10", "10"), ln(capital.AccountID, "", "10")}, apperrors.CodeInvalidLine},
		{"unknown account", []dto.JournalLineRequest{ln(cash.AccountID, "10", ""), ln(uuid.NewString(), "", "10")}, apperrors.CodeUnknownAccount},
		{"inactive account", []dto.JournalLineRequest{ln(cash.AccountID, "10", ""), ln(closed.AccountID, "", "10")}, apperrors.CodeInactiveAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.journals.CreateJournal(ctx, dto.CreateJournalRequest{Date: "2024-03-01", Narration: "x", Lines: tt.lines}, f.actor)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}

	_, err := f.journals.CreateJournal(ctx, dto.CreateJournalRequest{
		Date:  "2024-3-1", Narration: "x",
		Lines: []dto.JournalLineRequest{ln(cash.AccountID, "1", ""), ln(capital.AccountID, "", "1")},
	}, f.actor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPostJournal_ReadOnlyRoleForbidden(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)
	j := f.draft(t, "2024-03-01", ln(cash.AccountID, "10", ""), ln(capital.AccountID, "", "10"))

	_, err := f.journals.PostJournal(context.Background(), j.JournalID, domain.Actor{ID: "aud-1", Role: domain.RoleAuditor})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assertDecimal(t, "0", f.balance(t, cash.AccountID))
}

func TestConcurrentPostsKeepLedgerBalanced(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	cash := f.account(t, "1001", domain.Asset)
	bank := f.account(t, "1002", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)

	const n = 40
	drafts := make([]*domain.JournalEntry, n)
	for i := range drafts {
		// Alternate line order so concurrent posts request the same accounts in different orders.
		if i%2 == 0 {
			drafts[i] = f.draft(t, "2024-03-01", ln(cash.AccountID, "1", ""), ln(bank.AccountID, "2", ""), ln(capital.AccountID, "", "3"))
		} else {
			drafts[i] = f.draft(t, "2024-03-01", ln(capital.AccountID, "", "3"), ln(bank.AccountID, "2", ""), ln(cash.AccountID, "1", ""))
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, n*2)
	for _, d := range drafts {
		for range 2 {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if _, err := f.journals.PostJournal(ctx, id, f.actor); err != nil {
					errs <- err
				}
			}(d.JournalID)
		}
	}
	wg.Wait()
	close(errs)

	failures := 0
	for err := range errs {
		assert.ErrorIs(t, err, apperrors.ErrNotDraft)
		failures++
	}
	assert.Equal(t, n, failures, "each draft posts exactly once")

	assertDecimal(t, "40", f.balance(t, cash.AccountID))
	assertDecimal(t, "80", f.balance(t, bank.AccountID))
	assertDecimal(t, "120", f.balance(t, capital.AccountID))

	tb, err := f.reports.GetTrialBalance(ctx, fixtureNow, domain.TrialBalanceFilter{}, f.actor)
	require.NoError(t, err)
	assert.True(t, tb.IsBalanced)
}

func TestConcurrentCreatesGetUniqueNumbers(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "1001", domain.Asset)
	capital := f.account(t, "3001", domain.Equity)

	const n = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]struct{}, n)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j, err := f.journals.CreateJournal(context.Background(), dto.CreateJournalRequest{
				Date:      "2024-03-01",
				Narration: "concurrent",
				Lines:     []dto.JournalLineRequest{ln(cash.AccountID, "1", ""), ln(capital.AccountID, "", "1")},
			}, f.actor)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers[j.JournalNumber] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, numbers, n)
}
