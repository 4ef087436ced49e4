package usecase

import (
	"time"

	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"github.com/teamsense-lab/argus/pkg/domain/model/config"
	"github.com/teamsense-lab/argus/pkg/service/usercache"
	"github.com/teamsense-lab/argus/pkg/utils/crypto"
)

type UseCases struct {
	repo    interfaces.Repository
	cipher  *crypto.Cipher
	oauth   interfaces.OAuthClient
	factory interfaces.TrackerClientFactory
	chat    interfaces.ChatService
	users   *usercache.Cache
	scoring *config.Scoring
	now     func() time.Time
}

type Option func(*UseCases)

func WithCipher(c *crypto.Cipher) Option {
	return func(uc *UseCases) {
		uc.cipher = c
	}
}

func WithOAuth(o interfaces.OAuthClient) Option {
	return func(uc *UseCases) {
		uc.oauth = o
	}
}

func WithTrackerClientFactory(f interfaces.TrackerClientFactory) Option {
	return func(uc *UseCases) {
		uc.factory = f
	}
}

func WithChat(c interfaces.ChatService) Option {
	return func(uc *UseCases) {
		uc.chat = c
	}
}

func WithUserCache(c *usercache.Cache) Option {
	return func(uc *UseCases) {
		uc.users = c
	}
}

func WithScoring(cfg *config.Scoring) Option {
	return func(uc *UseCases) {
		uc.scoring = cfg
	}
}

// WithClock replaces the time source, used by tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:    repo,
		scoring: config.DefaultScoring(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.users == nil {
		uc.users = usercache.New()
	}

	return uc
}
