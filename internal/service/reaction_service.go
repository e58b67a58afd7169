package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/blog-cms/internal/ratelimit"
	"github.com/maheshrc27/blog-cms/internal/repository"
)

type ReactionService interface {
	MarkHelpful(ctx context.Context, slug, ip, userAgent string) (int64, error)
}

type reactionService struct {
	pr      repository.PostRepository
	limiter ratelimit.Limiter
}

func NewReactionService(pr repository.PostRepository, limiter ratelimit.Limiter) ReactionService {
	return &reactionService{pr: pr, limiter: limiter}
}

// MarkHelpful counts one "helpful" vote, limited per hashed client. A limiter
// outage lets the vote through.
func (s *reactionService) MarkHelpful(ctx context.Context, slug, ip, userAgent string) (int64, error) {
	allowed, err := s.limiter.Allow(ctx, ratelimit.ClientKey(ip, userAgent))
	if err != nil {
		slog.Warn("rate limiter unavailable", "error", err)
		allowed = true
	}
	if !allowed {
		return 0, ErrRateLimited
	}

	count, found, err := s.pr.IncrementHelpful(ctx, slug)
	if err != nil {
		return 0, fmt.Errorf("increment helpful: %w", err)
	}
	if !found {
		return 0, ErrNotFound
	}
	return count, nil
}
