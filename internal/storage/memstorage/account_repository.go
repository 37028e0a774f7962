package memstorage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"golang.org/x/crypto/bcrypt"
)

type AccountRepository struct {
	mu          sync.RWMutex
	accounts    map[uuid.UUID]*account.Account
	byEmail     map[string]uuid.UUID
	customers   map[uuid.UUID]*account.Customer
	resetTokens map[string]*account.PasswordResetToken
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts:    make(map[uuid.UUID]*account.Account),
		byEmail:     make(map[string]uuid.UUID),
		customers:   make(map[uuid.UUID]*account.Customer),
		resetTokens: make(map[string]*account.PasswordResetToken),
	}
}

var _ account.Repository = (*AccountRepository)(nil)

// AddAccount stores an account with a bcrypt hash of password and returns it.
func (r *AccountRepository) AddAccount(email, password string) *account.Account {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	acc := &account.Account{Email: email, PasswordHash: string(hashed)}
	_, _ = r.Create(context.Background(), acc)
	return acc
}

func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(acc.Email)
	if _, ok := r.byEmail[key]; ok {
		return uuid.Nil, account.ErrEmailTaken
	}
	acc.ID = uuid.New()
	acc.CreatedAt = time.Now()
	stored := *acc
	r.accounts[acc.ID] = &stored
	r.byEmail[key] = acc.ID
	return acc.ID, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	accCopy := *acc
	return &accCopy, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *AccountRepository) FindCustomer(ctx context.Context, userID uuid.UUID) (*account.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[userID]
	if !ok {
		return nil, account.ErrCustomerNotFound
	}
	cCopy := *c
	return &cCopy, nil
}

func (r *AccountRepository) FindCustomerByStripeID(ctx context.Context, stripeCustomerID string) (*account.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.customers {
		if c.StripeCustomerID != "" && c.StripeCustomerID == stripeCustomerID {
			cCopy := *c
			return &cCopy, nil
		}
	}
	return nil, account.ErrCustomerNotFound
}

func (r *AccountRepository) UpsertCustomer(ctx context.Context, c *account.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *c
	if prev, ok := r.customers[c.UserID]; ok {
		if stored.StripeCustomerID == "" {
			stored.StripeCustomerID = prev.StripeCustomerID
		}
		if stored.StripeSubscriptionID == "" {
			stored.StripeSubscriptionID = prev.StripeSubscriptionID
		}
	}
	stored.UpdatedAt = time.Now()
	r.customers[c.UserID] = &stored
	return nil
}

func (r *AccountRepository) CreateResetToken(ctx context.Context, t *account.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *t
	stored.CreatedAt = time.Now()
	r.resetTokens[t.TokenHash] = &stored
	return nil
}

func (r *AccountRepository) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.resetTokens[tokenHash]
	if !ok || t.UsedAt != nil || !t.ExpiresAt.After(now) {
		return uuid.Nil, account.ErrResetTokenInvalid
	}
	acc, ok := r.accounts[t.UserID]
	if !ok {
		return uuid.Nil, account.ErrAccountNotFound
	}
	usedAt := now
	t.UsedAt = &usedAt
	acc.PasswordHash = passwordHash
	return t.UserID, nil
}

func (r *AccountRepository) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for hash, t := range r.resetTokens {
		if !t.ExpiresAt.After(now) || t.UsedAt != nil {
			delete(r.resetTokens, hash)
			n++
		}
	}
	return n, nil
}
