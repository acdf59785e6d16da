package models

// Requests for the analysis HTTP endpoints.

type AnalyzeRequest struct {
	Ticker  string `query:"ticker" json:"ticker" validate:"required,max=12,printascii"`
	Refresh bool   `query:"refresh" json:"refresh"`
}

type SignalsRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,max=12,printascii"`
}

type HistoryRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,max=12,printascii"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=100"`
}

type RecentAnalysesRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,max=12,printascii"`
	Limit  int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
}

// ScanRequest is the message consumed from the requests topic.
type ScanRequest struct {
	Ticker    string `json:"ticker"`
	RequestID string `json:"request_id,omitempty"`
}

// ScanResult is published for every analysis, whatever triggered it.
type ScanResult struct {
	RequestID string          `json:"request_id,omitempty"`
	Trigger   string          `json:"trigger"`
	Ticker    string          `json:"ticker"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}
