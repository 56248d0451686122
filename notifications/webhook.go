package notifications

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"futures-signals/metrics"
	"futures-signals/signals"
)

// WebhookNotifier posts emitted signals as JSON to configured HTTP
// endpoints. Deliveries run on their own goroutines so a slow endpoint
// never stalls the tick.
type WebhookNotifier struct {
	urls       []string
	retryCount int
	retryDelay time.Duration
	client     *http.Client
}

// WebhookPayload is the JSON body delivered to each endpoint.
type WebhookPayload struct {
	EventID          string                 `json:"event_id"`
	SignalType       string                 `json:"signal_type"`
	Symbol           string                 `json:"symbol"`
	Direction        string                 `json:"direction"`
	Strength         int                    `json:"strength"`
	Price            float64                `json:"price"`
	Timeframe        string                 `json:"timeframe"`
	Message          string                 `json:"message"`
	FormattedMessage string                 `json:"formatted_message"`
	Timestamp        string                 `json:"timestamp"`
	Extra            map[string]interface{} `json:"extra,omitempty"`
}

// NewWebhookNotifier creates a notifier for the given endpoints. A
// non-positive retryCount means a single attempt.
func NewWebhookNotifier(urls []string, retryCount int, retryDelay time.Duration) *WebhookNotifier {
	if retryCount <= 0 {
		retryCount = 1
	}
	return &WebhookNotifier{
		urls:       urls,
		retryCount: retryCount,
		retryDelay: retryDelay,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// HandleSignal builds the payload for one emission and dispatches it to
// every endpoint. It matches the engine callback signature.
func (n *WebhookNotifier) HandleSignal(sig *signals.Signal, formatted string) {
	if len(n.urls) == 0 {
		return
	}

	payload := WebhookPayload{
		EventID:          uuid.NewString(),
		SignalType:       sig.SignalType,
		Symbol:           sig.Symbol,
		Direction:        sig.Direction,
		Strength:         sig.Strength,
		Price:            sig.Price,
		Timeframe:        sig.Timeframe,
		Message:          sig.Message,
		FormattedMessage: formatted,
		Timestamp:        sig.Timestamp,
		Extra:            sig.Extra,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️  Failed to marshal webhook payload: %v", err)
		return
	}

	for _, url := range n.urls {
		go n.deliver(url, body)
	}
}

func (n *WebhookNotifier) deliver(url string, payload []byte) {
	for attempt := 1; attempt <= n.retryCount; attempt++ {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(payload))
		if err != nil {
			log.Printf("⚠️  Invalid webhook request for %s: %v", url, err)
			metrics.IncWebhookDelivery("failed")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "Futures-Signal-Engine/1.0")

		resp, err := n.client.Do(req)
		if err == nil {
			code := resp.StatusCode
			resp.Body.Close()
			if code >= 200 && code < 300 {
				metrics.IncWebhookDelivery("ok")
				return
			}
			log.Printf("⚠️  Webhook %s returned %d (attempt %d/%d)", url, code, attempt, n.retryCount)
		} else {
			log.Printf("⚠️  Webhook %s failed: %v (attempt %d/%d)", url, err, attempt, n.retryCount)
		}

		if attempt < n.retryCount {
			time.Sleep(n.retryDelay)
		}
	}

	metrics.IncWebhookDelivery("failed")
	log.Printf("❌ Webhook delivery to %s exhausted retries", url)
}
