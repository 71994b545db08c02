package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"github.com/wheeldeal/wheeldeal-backend/internal/reqctx"
	"google.golang.org/genai"
)

type SuggestClient struct {
	model      string
	httpClient *http.Client
}

func NewSuggestClient(httpClient *http.Client) *SuggestClient {
	m := os.Getenv("GEMINI_MODEL")
	if m == "" {
		m = "gemini-2.5-flash"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &SuggestClient{model: m, httpClient: httpClient}
}

// SuggestPrice asks Gemini for a fair asking price in whole rupees.
func (c *SuggestClient) SuggestPrice(ctx context.Context, v *model.Vehicle) (int64, error) {
	rid := reqctx.RID(ctx)
	vehicleID := reqctx.VehicleID(ctx)
	start := time.Now()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{HTTPClient: c.httpClient})
	if err != nil {
		log.Printf("[ai] rid=%s vehicle=%d stage=client_init err=%v", rid, vehicleID, err)
		return 0, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(BuildPricePrompt(v)),
		}, genai.RoleUser),
	}
	temp := float32(0)
	config := &genai.GenerateContentConfig{Temperature: &temp}

	log.Printf("[ai] rid=%s vehicle=%d stage=gemini_start model=%s", rid, vehicleID, c.model)
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		log.Printf("[ai] rid=%s vehicle=%d stage=gemini_fail model=%s err=%v", rid, vehicleID, c.model, err)
		return 0, fmt.Errorf("gemini generate: %w", err)
	}
	rawText := res.Text()
	price, err := ParseRupees(rawText)
	if err != nil {
		log.Printf("[ai] rid=%s vehicle=%d stage=parse_fail len=%d err=%v", rid, vehicleID, len(rawText), err)
		return 0, err
	}
	log.Printf("[ai] rid=%s vehicle=%d stage=parse_ok price=%d totalMs=%d", rid, vehicleID, price, time.Since(start).Milliseconds())
	return price, nil
}

// ReplySuggestion is the structured negotiation advice returned to the seller.
type ReplySuggestion struct {
	Decision     string `json:"decision"`
	CounterPrice int64  `json:"counterPrice"`
	Reasoning    string `json:"reasoning"`
	Reply        string `json:"reply"`
}

// SuggestReply asks Gemini for a negotiation response over the thread history.
// The model is forced to JSON output and the result parsed strictly.
func (c *SuggestClient) SuggestReply(ctx context.Context, listingPrice, offerPrice int64, history []HistoryEntry) (*ReplySuggestion, error) {
	rid := reqctx.RID(ctx)
	client, err := genai.NewClient(ctx, &genai.ClientConfig{HTTPClient: c.httpClient})
	if err != nil {
		log.Printf("[ai] rid=%s stage=client_init err=%v", rid, err)
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(BuildReplyPrompt(listingPrice, offerPrice, history)),
		}, genai.RoleUser),
	}
	temp := float32(0.3)
	config := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}

	log.Printf("[ai] rid=%s stage=gemini_start model=%s kind=reply", rid, c.model)
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		log.Printf("[ai] rid=%s stage=gemini_fail model=%s err=%v", rid, c.model, err)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	var out ReplySuggestion
	if err := json.Unmarshal([]byte(res.Text()), &out); err != nil {
		log.Printf("[ai] rid=%s stage=parse_fail err=%v", rid, err)
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	switch out.Decision {
	case "ACCEPT", "REJECT", "COUNTER":
	default:
		return nil, fmt.Errorf("%w: unexpected decision %q", ErrParseFailed, out.Decision)
	}
	log.Printf("[ai] rid=%s stage=parse_ok decision=%s counter=%d", rid, out.Decision, out.CounterPrice)
	return &out, nil
}
