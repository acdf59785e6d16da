package models

type SentimentLabel string

const (
	SentimentBullish SentimentLabel = "bullish"
	SentimentBearish SentimentLabel = "bearish"
	SentimentNeutral SentimentLabel = "neutral"
)

// NewsItem is a headline scored for sentiment. Score is in [-1,1].
type NewsItem struct {
	Title     string         `json:"title"`
	Source    string         `json:"source"`
	Sentiment SentimentLabel `json:"sentiment"`
	Score     float64        `json:"sentimentScore"`
	Timestamp int64          `json:"timestamp"` // epoch milliseconds
	URL       string         `json:"url,omitempty"`
}

// AverageSentiment returns the mean score of items, 0 when empty.
func AverageSentiment(items []NewsItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, n := range items {
		sum += n.Score
	}
	return sum / float64(len(items))
}
