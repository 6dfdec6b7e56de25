package fakeapi

import (
	"crypto/rand"
	"encoding/base64"
	"sort"
	"sync"
	"time"
)

type user struct {
	ID           int
	Username     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

type analysis struct {
	ID         int
	URL        string
	TopWords   []WordCount
	AnalyzedAt time.Time
	UserID     int
}

type refreshToken struct {
	Token     string
	UserID    int
	ExpiresAt time.Time
	Revoked   bool
}

type memoryDB struct {
	lock          sync.RWMutex
	users         map[int]user
	usersByName   map[string]int
	usersByEmail  map[string]int
	analyses      []analysis
	refreshTokens map[string]*refreshToken
	nextUserID    int
	nextAnalysis  int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		users:         make(map[int]user),
		usersByName:   make(map[string]int),
		usersByEmail:  make(map[string]int),
		refreshTokens: make(map[string]*refreshToken),
	}
}

// addUser stores u and assigns its id. It reports which unique field clashed.
func (db *memoryDB) addUser(u user) (user, string) {
	db.lock.Lock()
	defer db.lock.Unlock()
	if _, exists := db.usersByName[u.Username]; exists {
		return user{}, "Username already registered"
	}
	if _, exists := db.usersByEmail[u.Email]; exists {
		return user{}, "Email already registered"
	}
	db.nextUserID++
	u.ID = db.nextUserID
	db.users[u.ID] = u
	db.usersByName[u.Username] = u.ID
	db.usersByEmail[u.Email] = u.ID
	return u, ""
}

func (db *memoryDB) userByName(username string) (user, bool) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	id, ok := db.usersByName[username]
	if !ok {
		return user{}, false
	}
	return db.users[id], true
}

func (db *memoryDB) userByID(id int) (user, bool) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	u, ok := db.users[id]
	return u, ok
}

func (db *memoryDB) issueRefreshToken(userID int, expiresAt time.Time) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	db.lock.Lock()
	defer db.lock.Unlock()
	db.refreshTokens[token] = &refreshToken{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return token, nil
}

// revokeRefreshToken marks token revoked and returns its owner. Unknown,
// revoked and expired tokens are rejected.
func (db *memoryDB) revokeRefreshToken(token string, now time.Time) (int, bool) {
	db.lock.Lock()
	defer db.lock.Unlock()
	rt, ok := db.refreshTokens[token]
	if !ok || rt.Revoked || !now.Before(rt.ExpiresAt) {
		return 0, false
	}
	rt.Revoked = true
	return rt.UserID, true
}

func (db *memoryDB) addAnalysis(a analysis) analysis {
	db.lock.Lock()
	defer db.lock.Unlock()
	db.nextAnalysis++
	a.ID = db.nextAnalysis
	db.analyses = append(db.analyses, a)
	return a
}

// historyPage returns analyses newest first. userID 0 selects every user.
func (db *memoryDB) historyPage(userID, page, size int) ([]analysis, int) {
	db.lock.RLock()
	matched := make([]analysis, 0, len(db.analyses))
	for _, a := range db.analyses {
		if userID == 0 || a.UserID == userID {
			matched = append(matched, a)
		}
	}
	db.lock.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].AnalyzedAt.Equal(matched[j].AnalyzedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].AnalyzedAt.After(matched[j].AnalyzedAt)
	})

	total := len(matched)
	start := (page - 1) * size
	if start >= total {
		return []analysis{}, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total
}
