package accounts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"finbook/internal/docstore"
	"finbook/internal/models"

	"go.uber.org/zap"
)

// registryFile is the flat JSON array holding every account.
const registryFile = "users.json"

// PasswordHasher turns plaintext passwords into stored hashes and checks
// them on login. Injected so the index never touches plaintext storage
// decisions itself.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// Index is the authoritative account registry: an in-memory dual map
// (username and email) mirrored to a single JSON array file. Every
// mutation rewrites the whole file inside the same critical section that
// changes the maps, so readers never observe the two out of sync.
type Index struct {
	mu         sync.RWMutex
	byUsername map[string]*models.Account
	byEmail    map[string]*models.Account
	path       string
	hasher     PasswordHasher
	logger     *zap.Logger
}

// NewIndex loads the registry from <dataDir>/users.json. An absent file
// starts an empty registry; a corrupt one is an error.
func NewIndex(dataDir string, hasher PasswordHasher, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create data directory: %w", err)
	}

	idx := &Index{
		byUsername: make(map[string]*models.Account),
		byEmail:    make(map[string]*models.Account),
		path:       filepath.Join(dataDir, registryFile),
		hasher:     hasher,
		logger:     logger,
	}

	data, err := os.ReadFile(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("unable to read account registry: %w", err)
	}

	var all []models.Account
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("unable to decode account registry: %w", err)
	}
	for i := range all {
		acct := all[i]
		idx.byUsername[acct.Username] = &acct
		if acct.Email != "" {
			idx.byEmail[acct.Email] = &acct
		}
	}

	logger.Info("account registry loaded",
		zap.String("path", idx.path), zap.Int("accounts", len(all)))
	return idx, nil
}

// persistLocked rewrites the registry file from the current maps. Callers
// must hold the write lock.
func (idx *Index) persistLocked() error {
	all := make([]models.Account, 0, len(idx.byUsername))
	for _, acct := range idx.byUsername {
		all = append(all, *acct)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode account registry: %w", err)
	}
	if err := docstore.WriteAtomic(idx.path, data); err != nil {
		idx.logger.Error("persist account registry failed", zap.Error(err))
		return fmt.Errorf("unable to persist account registry: %w", err)
	}
	return nil
}

func validateRegistration(reg models.Registration) error {
	if err := validateUsername(reg.Username); err != nil {
		return err
	}
	if err := validateEmail(reg.Email); err != nil {
		return err
	}
	if err := validatePassword(reg.Password); err != nil {
		return err
	}
	if err := validateSecurityQA(reg.SecurityQuestion, reg.SecurityAnswer); err != nil {
		return err
	}
	return validateBirthday(reg.Birthday)
}

// Register validates the registration, enforces username and email
// uniqueness, hashes the password, and persists the new account.
func (idx *Index) Register(reg models.Registration) (*models.Account, error) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}

	hash, err := idx.hasher.Hash(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("unable to hash password: %w", err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.byUsername[reg.Username]; ok {
		return nil, ErrDuplicateUsername
	}
	if _, ok := idx.byEmail[reg.Email]; ok {
		return nil, ErrDuplicateEmail
	}

	acct := &models.Account{
		Username:         reg.Username,
		Email:            reg.Email,
		PasswordHash:     hash,
		SecurityQuestion: reg.SecurityQuestion,
		SecurityAnswer:   reg.SecurityAnswer,
		Birthday:         reg.Birthday,
		CreatedAt:        time.Now().UTC(),
	}
	idx.byUsername[acct.Username] = acct
	idx.byEmail[acct.Email] = acct

	if err := idx.persistLocked(); err != nil {
		delete(idx.byUsername, acct.Username)
		delete(idx.byEmail, acct.Email)
		return nil, err
	}

	idx.logger.Info("account registered", zap.String("username", acct.Username))
	copied := *acct
	return &copied, nil
}

// resolveLocked picks the lookup map by identifier shape: anything
// containing '@' is an email, everything else a username. Callers must
// hold at least the read lock.
func (idx *Index) resolveLocked(identifier string) *models.Account {
	if strings.Contains(identifier, "@") {
		return idx.byEmail[identifier]
	}
	return idx.byUsername[identifier]
}

// ValidateLogin resolves the identifier and checks the password against
// the stored hash. Returns ErrInvalidCredentials on any miss so callers
// cannot distinguish a wrong password from an unknown identifier.
func (idx *Index) ValidateLogin(identifier, password string) (*models.Account, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	acct := idx.resolveLocked(identifier)
	if acct == nil || !idx.hasher.Verify(acct.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	copied := *acct
	return &copied, nil
}

// FindByIdentifier resolves a username or email to its account.
func (idx *Index) FindByIdentifier(identifier string) (*models.Account, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	acct := idx.resolveLocked(identifier)
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	copied := *acct
	return &copied, nil
}

// Update applies a profile update to an existing account. The new email
// may not collide with a different account. The old email mapping is
// removed before the new one is inserted so a stale entry cannot survive.
// An empty NewPassword keeps the stored hash.
func (idx *Index) Update(up models.ProfileUpdate) error {
	if err := validateUsername(up.Username); err != nil {
		return err
	}
	if err := validateEmail(up.Email); err != nil {
		return err
	}
	if up.NewPassword != "" {
		if err := validatePassword(up.NewPassword); err != nil {
			return err
		}
	}
	if err := validateSecurityQA(up.SecurityQuestion, up.SecurityAnswer); err != nil {
		return err
	}
	if err := validateBirthday(up.Birthday); err != nil {
		return err
	}

	var newHash string
	if up.NewPassword != "" {
		hash, err := idx.hasher.Hash(up.NewPassword)
		if err != nil {
			return fmt.Errorf("unable to hash password: %w", err)
		}
		newHash = hash
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	acct, ok := idx.byUsername[up.Username]
	if !ok {
		return ErrAccountNotFound
	}
	if other, ok := idx.byEmail[up.Email]; ok && other.Username != up.Username {
		return ErrDuplicateEmail
	}

	previous := *acct
	if acct.Email != up.Email {
		delete(idx.byEmail, acct.Email)
	}
	acct.Email = up.Email
	acct.SecurityQuestion = up.SecurityQuestion
	acct.SecurityAnswer = up.SecurityAnswer
	acct.Birthday = up.Birthday
	if newHash != "" {
		acct.PasswordHash = newHash
	}
	idx.byEmail[acct.Email] = acct

	if err := idx.persistLocked(); err != nil {
		delete(idx.byEmail, acct.Email)
		*acct = previous
		idx.byEmail[acct.Email] = acct
		return err
	}

	idx.logger.Info("account updated", zap.String("username", acct.Username))
	return nil
}

// ResetPassword resolves the account by email only, checks the security
// answer exactly, and stores a new hash for the password.
func (idx *Index) ResetPassword(email, securityAnswer, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := idx.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("unable to hash password: %w", err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	acct, ok := idx.byEmail[email]
	if !ok {
		return ErrAccountNotFound
	}
	if acct.SecurityAnswer != securityAnswer {
		return ErrWrongSecurityReply
	}

	previousHash := acct.PasswordHash
	acct.PasswordHash = hash

	if err := idx.persistLocked(); err != nil {
		acct.PasswordHash = previousHash
		return err
	}

	idx.logger.Info("password reset", zap.String("username", acct.Username))
	return nil
}

// Remove deletes an account from the registry. It is the bulk-cleanup
// path; partition documents are purged separately by the caller.
func (idx *Index) Remove(username string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	acct, ok := idx.byUsername[username]
	if !ok {
		return ErrAccountNotFound
	}

	delete(idx.byUsername, username)
	delete(idx.byEmail, acct.Email)

	if err := idx.persistLocked(); err != nil {
		idx.byUsername[username] = acct
		idx.byEmail[acct.Email] = acct
		return err
	}

	idx.logger.Info("account removed", zap.String("username", username))
	return nil
}

// Count returns the number of registered accounts.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byUsername)
}
