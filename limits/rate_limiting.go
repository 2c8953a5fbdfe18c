package limits

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/libstring"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/t2bot/transfer-repo/api/responses"
	"github.com/t2bot/transfer-repo/common/config"
)

// NewRequestLimiter builds a per-client token bucket limiter for the API.
func NewRequestLimiter(conf config.RateLimitConfig) *limiter.Limiter {
	requestLimiter := tollbooth.NewLimiter(conf.RequestsPerSecond, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	requestLimiter.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
	requestLimiter.SetBurst(conf.BurstCount)

	b, _ := json.Marshal(responses.RateLimitReached())
	requestLimiter.SetMessage(string(b))
	requestLimiter.SetMessageContentType("application/json")
	return requestLimiter
}

func GetRequestIP(requestLimiter *limiter.Limiter, r *http.Request) string {
	// Same implementation as tollbooth
	return libstring.RemoteIP(requestLimiter.GetIPLookups(), requestLimiter.GetForwardedForIndexFromBehind(), r)
}
