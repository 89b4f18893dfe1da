package engine

import (
	"time"

	"tradedesk/internal/models"
)

// ensureAccountLocked returns the account for id, creating a placeholder
// record when the id is unknown. Caller holds the lock.
func (e *Engine) ensureAccountLocked(id string) *models.Account {
	if acct, ok := e.accounts[id]; ok {
		return acct
	}
	acct := models.NewPlaceholderAccount(id)
	e.accounts[id] = acct
	e.accountIDs = append(e.accountIDs, id)
	return acct
}

// resolveLocked maps an empty account id to the current selection.
func (e *Engine) resolveLocked(id string) string {
	if id == "" {
		return e.currentAccount
	}
	return id
}

// AddAccount registers an account. Equity and free margin are initialized
// from the balance; an existing account with the same id is left untouched.
func (e *Engine) AddAccount(acct models.Account) *models.Account {
	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.accounts[acct.ID]; ok {
		return existing
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	acct.Equity = acct.Balance
	acct.FreeMargin = acct.Balance
	a := acct
	e.accounts[a.ID] = &a
	e.accountIDs = append(e.accountIDs, a.ID)
	if e.currentAccount == "" {
		e.currentAccount = a.ID
	}
	return &a
}

// SelectAccount switches the active account pointer, creating a placeholder
// account record when the id is unknown.
func (e *Engine) SelectAccount(id string) *models.Account {
	e.mu.Lock()
	defer e.mu.Unlock()

	acct := e.ensureAccountLocked(id)
	e.currentAccount = id
	return cloneAccount(acct)
}

// CurrentAccount returns the id of the selected account.
func (e *Engine) CurrentAccount() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentAccount
}

// Account returns a copy of the account with the given id, or nil.
// An empty id resolves to the current selection.
func (e *Engine) Account(id string) *models.Account {
	e.mu.Lock()
	defer e.mu.Unlock()

	acct, ok := e.accounts[e.resolveLocked(id)]
	if !ok {
		return nil
	}
	return cloneAccount(acct)
}

// Accounts returns copies of all accounts in stable registration order.
func (e *Engine) Accounts() []models.Account {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Account, 0, len(e.accountIDs))
	for _, id := range e.accountIDs {
		out = append(out, *e.accounts[id])
	}
	return out
}

// BalanceHistory returns the recorded balance snapshots for an account.
func (e *Engine) BalanceHistory(accountID string) []models.BalanceSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snaps := e.balances[e.resolveLocked(accountID)]
	out := make([]models.BalanceSnapshot, len(snaps))
	copy(out, snaps)
	return out
}

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	return &c
}
