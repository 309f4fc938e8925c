package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"stockpredictor/llm"

	"github.com/rs/zerolog/log"
)

const sentimentSystemPrompt = "You are a world-class financial analyst. Your task is to provide a brief market sentiment analysis " +
	"based on recent news for a given company. Your response must be a valid JSON object with two keys: " +
	"\"summary\" and \"sentiment\". The \"summary\" should be a concise, single-paragraph overview of " +
	"the key news. The \"sentiment\" must be one of three string values: \"Bullish\", \"Bearish\", or \"Neutral\". " +
	"Do not add any text, markdown formatting, or code fences outside of the JSON object."

var sentiments = map[string]bool{"Bullish": true, "Bearish": true, "Neutral": true}

// SentimentResult is the model reply as decoded, extra keys included.
type SentimentResult map[string]any

// SentimentService asks the language model for a news sentiment summary.
// A nil client means no API key was configured.
type SentimentService struct {
	client llm.Completer
}

func NewSentimentService(client llm.Completer) *SentimentService {
	return &SentimentService{client: client}
}

// ValidTicker reports whether t is a non-empty run of letters.
func ValidTicker(t string) bool {
	if t == "" {
		return false
	}
	for _, r := range t {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func (s *SentimentService) Analyze(ctx context.Context, ticker string) (SentimentResult, error) {
	ticker = NormalizeTicker(ticker)
	if !ValidTicker(ticker) {
		return nil, newError(KindInvalidTicker, "Invalid ticker format.")
	}
	if s.client == nil {
		return nil, newError(KindConfiguration, "Gemini (Google Generative AI) API key not configured on the server.")
	}

	reply, err := s.client.Complete(ctx, sentimentSystemPrompt, "Analyze recent news for the stock with ticker: "+ticker)
	if err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("Sentiment request failed")
		return nil, fmt.Errorf("An error occurred during sentiment analysis: %w", err)
	}
	reply = strings.TrimSpace(reply)

	var data map[string]any
	if err := json.Unmarshal([]byte(reply), &data); err != nil {
		return nil, &Error{Kind: KindBadUpstreamResponse, Message: "Model did not return valid JSON.", Detail: reply, Err: err}
	}
	_, hasSummary := data["summary"]
	sentiment, hasSentiment := data["sentiment"]
	if !hasSummary || !hasSentiment {
		return nil, &Error{
			Kind:    KindBadUpstreamResponse,
			Message: "JSON response missing required keys: 'summary' and/or 'sentiment'.",
			Detail:  data,
		}
	}
	label, ok := sentiment.(string)
	if !ok || !sentiments[label] {
		return nil, &Error{
			Kind:    KindBadUpstreamResponse,
			Message: "Invalid sentiment value. Must be one of: Bullish, Bearish, Neutral.",
			Detail:  data,
		}
	}

	return SentimentResult(data), nil
}
