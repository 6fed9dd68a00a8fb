package analysis

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"tender-backend/internal/ai"
	"tender-backend/internal/shared/telemetry"
)

const aiRetryBaseDelay = 300 * time.Millisecond

// retryingAnalyzer retries one time on transient provider failures.
type retryingAnalyzer struct {
	base      ai.Analyzer
	tenderID  string
	requestID string
}

func newRetryingAnalyzer(base ai.Analyzer, tenderID, requestID string) ai.Analyzer {
	if base == nil {
		return nil
	}
	return retryingAnalyzer{base: base, tenderID: tenderID, requestID: requestID}
}

func (r retryingAnalyzer) Analyze(ctx context.Context, input ai.AnalyzeInput) (ai.AnalyzeOutput, error) {
	out, err := r.base.Analyze(ctx, input)
	if err == nil || !shouldRetryAI(err) {
		return out, err
	}

	telemetry.Warn("aiRetry", map[string]any{
		"requestId": r.requestID,
		"tenderId":  r.tenderID,
		"error":     sanitizeError(err),
	})
	select {
	case <-time.After(aiRetryBaseDelay):
	case <-ctx.Done():
		return ai.AnalyzeOutput{}, ctx.Err()
	}

	return r.base.Analyze(ctx, input)
}

func shouldRetryAI(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "status 5") || strings.Contains(msg, "overloaded") {
		return true
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "client.timeout") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
