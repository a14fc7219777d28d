package bookapi

import "sync"

// accountRepository is the in-memory store used by the tests. The
// mutex stands in for the document store's single-document atomicity.
type accountRepository struct {
	mu       sync.Mutex
	accounts map[ID]*Account
}

func NewAccountRepository() Repository {
	return &accountRepository{accounts: map[ID]*Account{}}
}

func (repo *accountRepository) FindByID(id ID) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if acc, ok := repo.accounts[id]; ok {
		return cloneAccount(acc), nil
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) FindByName(username string) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, acc := range repo.accounts {
		if acc.Username == username {
			return cloneAccount(acc), nil
		}
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) FindByEmail(email string) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, acc := range repo.accounts {
		if acc.Email == email {
			return cloneAccount(acc), nil
		}
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) Store(acc *Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.accounts {
		if existing.Username == acc.Username {
			return ErrExistingUsername
		}
		if existing.Email == acc.Email {
			return ErrExistingEmail
		}
	}

	repo.accounts[acc.ID] = cloneAccount(acc)
	return nil
}

func (repo *accountRepository) AddBook(id ID, book SavedBook) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	acc, ok := repo.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	if !acc.HasBook(book.BookID) {
		acc.SavedBooks = append(acc.SavedBooks, book)
	}
	return cloneAccount(acc), nil
}

func (repo *accountRepository) RemoveBook(id ID, bookID string) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	acc, ok := repo.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	for i, b := range acc.SavedBooks {
		if b.BookID == bookID {
			acc.SavedBooks = append(acc.SavedBooks[:i], acc.SavedBooks[i+1:]...)
			break
		}
	}
	return cloneAccount(acc), nil
}

func (repo *accountRepository) UpdatePassword(id ID, hash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	acc, ok := repo.accounts[id]
	if !ok {
		return ErrNotFound
	}

	acc.password = hash
	return nil
}

func cloneAccount(acc *Account) *Account {
	c := *acc
	c.SavedBooks = append([]SavedBook{}, acc.SavedBooks...)
	return &c
}
