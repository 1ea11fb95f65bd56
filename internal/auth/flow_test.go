package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-upwork-automation/internal/config"
	"go-upwork-automation/internal/session"

	"github.com/stretchr/testify/assert"
)

func testConfig() *config.Config {
	return &config.Config{
		UpworkEmail:    "tester@example.com",
		UpworkPassword: "secret",
	}
}

func TestEnsure_ReusesStoredSession(t *testing.T) {
	cfg := testConfig()
	store := session.NewStore(t.TempDir(), 7)
	err := store.Save(cfg.UpworkEmail, &session.Artifact{
		CapturedAt: time.Now().UTC(),
		Cookies: []session.Cookie{
			{Name: "XSRF-TOKEN", Value: "tok"},
			{Name: "upwork_ws_access_token", Value: "acc"},
		},
	})
	assert.NoError(t, err)

	flow := New(cfg, store)
	//nil manager: a valid stored session must never touch the browser
	art, err := flow.Ensure(context.Background(), nil)

	assert.NoError(t, err)
	if assert.NotNil(t, art) {
		assert.Len(t, art.Cookies, 2)
	}
	assert.Equal(t, StateAuthenticated, flow.State())
}

func TestEnsure_NoSessionAndNoBrowserFails(t *testing.T) {
	cfg := testConfig()
	flow := New(cfg, session.NewStore(t.TempDir(), 7))

	art, err := flow.Ensure(context.Background(), nil)

	assert.Nil(t, art)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Equal(t, StateFailed, flow.State())
}

func TestEnsure_StaleSessionTriggersLogin(t *testing.T) {
	cfg := testConfig()
	store := session.NewStore(t.TempDir(), 7)
	err := store.Save(cfg.UpworkEmail, &session.Artifact{
		//captured long before the max age window
		CapturedAt: time.Now().UTC().Add(-30 * 24 * time.Hour),
		Cookies:    []session.Cookie{{Name: "XSRF-TOKEN", Value: "tok"}},
	})
	assert.NoError(t, err)

	flow := New(cfg, store)
	_, err = flow.Ensure(context.Background(), nil)

	//stale artifact means a real login, which has no browser here
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestInvalidateSessionForcesRelogin(t *testing.T) {
	cfg := testConfig()
	store := session.NewStore(t.TempDir(), 7)
	err := store.Save(cfg.UpworkEmail, &session.Artifact{
		CapturedAt: time.Now().UTC(),
		Cookies:    []session.Cookie{{Name: "XSRF-TOKEN", Value: "tok"}},
	})
	assert.NoError(t, err)

	flow := New(cfg, store)
	_, err = flow.Ensure(context.Background(), nil)
	assert.NoError(t, err)

	flow.InvalidateSession()
	assert.Equal(t, StateNeedLogin, flow.State())

	//artifact is gone, so the next Ensure needs a real login
	_, err = flow.Ensure(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestChallengeUnresolvedIsAuthenticationFailure(t *testing.T) {
	assert.True(t, errors.Is(ErrChallengeUnresolved, ErrAuthenticationFailed))
}
