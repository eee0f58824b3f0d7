package moderation

import (
	"net/http"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/logging"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

type leveledZerolog struct {
	inner *zerolog.Logger
}

// Intermediate failures are retried, so they are warnings rather than errors.
func (l leveledZerolog) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Info().Fields(keysAndValues).Msg(msg)
}

// Retries are logged at debug level by retryablehttp; they are worth seeing.
func (l leveledZerolog) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Info().Fields(keysAndValues).Msg(msg)
}

/*
An HTTP client for calling the classifier. It retries connection errors, 5xx
responses (other than 501), and 429s up to retryMax times. timeout bounds each
attempt on its own, so a hung first attempt still leaves room for a retry.

Only the caller's context deadline bounds the whole call, retries included.
*/
func RobustHTTPClient(timeout time.Duration, retryMax int) *http.Client {
	log := logging.GlobalLogger().With().Str("module", "moderation-http").Logger()

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = timeout
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledZerolog{&log})
	return retryClient.StandardClient()
}
