package moderation

import (
	"context"
	"errors"
	"strings"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/config"
	"git.campusqa.org/campusqa/campusqa/src/logging"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
	"git.campusqa.org/campusqa/campusqa/src/utils"
	"github.com/jpillora/backoff"
)

// The outcome of screening a submission that may be stored.
type Screening struct {
	Verdict Verdict

	// No verdict could be had and the failure policy let the content through.
	// It should be stored flagged for a moderator to review.
	NeedsReview bool
}

type Gate struct {
	classifier    Classifier
	timeout       time.Duration
	policy        config.ModerationFailurePolicy
	retryAttempts int
	bypass        map[string]bool

	// Wait between classifier attempts under the retry policy.
	Backoff backoff.Backoff
}

func NewGate(classifier Classifier, cfg config.ModerationConfig) *Gate {
	bypass := make(map[string]bool, len(cfg.ModeratorEmails))
	for _, email := range cfg.ModeratorEmails {
		bypass[strings.ToLower(strings.TrimSpace(email))] = true
	}

	return &Gate{
		classifier:    classifier,
		timeout:       cfg.Timeout,
		policy:        utils.OrDefault(cfg.FailurePolicy, config.FailureReject),
		retryAttempts: utils.OrDefault(cfg.RetryAttempts, 1),
		bypass:        bypass,
		Backoff: backoff.Backoff{
			Min:    250 * time.Millisecond,
			Max:    2 * time.Second,
			Factor: 2,
		},
	}
}

// A gate backed by the configured OpenAI moderations endpoint.
func NewGateFromConfig(cfg config.ModerationConfig) *Gate {
	return NewGate(NewOpenAIClassifier(cfg), cfg)
}

func (g *Gate) IsBypassed(email string) bool {
	return g.bypass[strings.ToLower(strings.TrimSpace(email))]
}

/*
Asks the classifier about content written by the user with the given email.
Moderators are not screened.

The call is bounded by the gate's timeout. Any failure to get a verdict is
returned as an error matching qaerr.ErrModerationUnavailable; it is never
turned into a verdict here.
*/
func (g *Gate) Classify(ctx context.Context, content, email string) (Verdict, error) {
	if g.IsBypassed(email) {
		return Verdict{Bypassed: true}, nil
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	verdict, err := g.classifier.Classify(ctx, content)
	if err != nil {
		if !errors.Is(err, qaerr.ErrModerationUnavailable) {
			err = &qaerr.UnavailableError{Cause: err}
		}
		return Verdict{}, err
	}

	if verdict.Flagged || len(verdict.CategoryScores) > 0 {
		logging.ExtractLogger(ctx).Debug().
			Bool("flagged", verdict.Flagged).
			Interface("category_scores", verdict.CategoryScores).
			Msg("moderation verdict")
	}

	return verdict, nil
}

/*
Decides whether content may be stored.

Flagged content returns a *qaerr.FlaggedError. When the classifier is
unavailable, the gate's failure policy decides: reject returns the
unavailable error, allow lets the content through with NeedsReview set,
and retry asks again with backoff before rejecting.
*/
func (g *Gate) Screen(ctx context.Context, content, email string) (Screening, error) {
	log := logging.ExtractLogger(ctx)

	verdict, err := g.classifyWithPolicy(ctx, content, email)
	if err != nil {
		if errors.Is(err, qaerr.ErrModerationUnavailable) && g.policy == config.FailureAllow && ctx.Err() == nil {
			log.Warn().Err(err).Msg("moderation unavailable; accepting content for review")
			screenings.WithLabelValues("needs_review").Inc()
			return Screening{NeedsReview: true}, nil
		}

		log.Warn().Err(err).Str("policy", string(g.policy)).Msg("moderation unavailable; rejecting content")
		screenings.WithLabelValues("unavailable").Inc()
		return Screening{}, err
	}

	if verdict.Flagged {
		categories := verdict.FlaggedCategories()
		log.Info().
			Strs("categories", categories).
			Interface("category_scores", verdict.CategoryScores).
			Msg("content flagged by moderation")
		screenings.WithLabelValues("flagged").Inc()
		return Screening{Verdict: verdict}, &qaerr.FlaggedError{
			Categories: categories,
			Scores:     verdict.CategoryScores,
		}
	}

	if verdict.Bypassed {
		screenings.WithLabelValues("bypassed").Inc()
	} else {
		screenings.WithLabelValues("passed").Inc()
	}
	return Screening{Verdict: verdict}, nil
}

func (g *Gate) classifyWithPolicy(ctx context.Context, content, email string) (Verdict, error) {
	if g.policy != config.FailureRetry {
		return g.Classify(ctx, content, email)
	}

	boff := g.Backoff
	boff.Reset()

	var lastErr error
	for attempt := 1; attempt <= g.retryAttempts; attempt++ {
		verdict, err := g.Classify(ctx, content, email)
		if err == nil {
			return verdict, nil
		}
		lastErr = err
		if !errors.Is(err, qaerr.ErrModerationUnavailable) || attempt == g.retryAttempts {
			break
		}

		wait := boff.Duration()
		logging.ExtractLogger(ctx).Debug().
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("moderation unavailable; retrying")
		if err := utils.SleepContext(ctx, wait); err != nil {
			return Verdict{}, &qaerr.UnavailableError{Cause: ctx.Err()}
		}
	}
	return Verdict{}, lastErr
}
