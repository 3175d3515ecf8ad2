package models

type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type JobStatusResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	PersonName   string  `json:"person_name"`
	SessionName  string  `json:"session_name"`
	DownloadURL  string  `json:"download_url,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

type SimilarReport struct {
	ReportID   string  `json:"report_id"`
	PersonName string  `json:"person_name"`
	Score      float32 `json:"score"`
	Excerpt    string  `json:"excerpt"`
}

type SimilarReportsResponse struct {
	Query   string          `json:"query"`
	Results []SimilarReport `json:"results"`
}
