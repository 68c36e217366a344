package service

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/ports"
)

var discard = log.New(io.Discard, "", 0)

// fakeBackend is a credential-style backend kept in memory. It mimics a
// hosted auth service: users by email, profiles by wallet, sessions only for
// matching passwords.
type fakeBackend struct {
	mu        sync.Mutex
	users     map[string]*core.User // by id
	passwords map[string]string     // by id
	profiles  map[string]string     // wallet -> user id

	lookupErr    error
	createErr    error
	signInErrs   []error
	createCalls  int
	signInCalls  int
	updateCalls  int
	sessionsMade int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:     map[string]*core.User{},
		passwords: map[string]string{},
		profiles:  map[string]string{},
	}
}

func (f *fakeBackend) FindProfileByWallet(ctx context.Context, wallet string) (*core.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	id, ok := f.profiles[wallet]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &core.Profile{ID: id, WalletAddress: wallet}, nil
}

func (f *fakeBackend) CreateUser(ctx context.Context, nu core.NewUser) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, u := range f.users {
		if u.Email == nu.Email {
			return nil, core.ErrUserExists
		}
	}
	u := &core.User{ID: uuid.NewString(), Email: nu.Email, EmailConfirmed: nu.EmailConfirm, Metadata: nu.Metadata}
	f.users[u.ID] = u
	f.passwords[u.ID] = nu.Password
	f.profiles[nu.Metadata.WalletAddress] = u.ID
	return u, nil
}

func (f *fakeBackend) UpdateUserPassword(ctx context.Context, userID, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if _, ok := f.users[userID]; !ok {
		return core.ErrNotFound
	}
	f.passwords[userID] = password
	return nil
}

func (f *fakeBackend) SignInWithPassword(ctx context.Context, email, password string) (*core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signInCalls++
	if len(f.signInErrs) > 0 {
		err := f.signInErrs[0]
		f.signInErrs = f.signInErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	for id, u := range f.users {
		if u.Email == email && f.passwords[id] == password {
			f.sessionsMade++
			return &core.Session{AccessToken: "access-" + id, RefreshToken: "refresh-" + id, TokenType: "bearer", User: u}, nil
		}
	}
	return nil, core.ErrBadCredentials
}

func (f *fakeBackend) userCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// racingBackend reports "not found" on the first lookup and "exists" on
// create, as when another request creates the user in between.
type racingBackend struct {
	*fakeBackend
	lookups int
}

func (r *racingBackend) FindProfileByWallet(ctx context.Context, wallet string) (*core.Profile, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, core.ErrNotFound
	}
	return r.fakeBackend.FindProfileByWallet(ctx, wallet)
}

type fakeIssuer struct {
	err   error
	calls []string
}

func (f *fakeIssuer) IssueSession(ctx context.Context, userID string) (*core.Session, error) {
	f.calls = append(f.calls, userID)
	if f.err != nil {
		return nil, f.err
	}
	return &core.Session{AccessToken: "issued-" + userID, RefreshToken: "r-" + userID}, nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	logins  []ports.WalletLoginEvent
	logouts []string
	err     error
}

func (p *recordingPublisher) PublishWalletLogin(ctx context.Context, e ports.WalletLoginEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins = append(p.logins, e)
	return p.err
}

func (p *recordingPublisher) PublishLogout(ctx context.Context, userID, tokenID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logouts = append(p.logouts, tokenID)
	return p.err
}

var errOutage = errors.New("connection refused")
