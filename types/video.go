package types

// VideoMetadata is what gets sent to the video host alongside the file.
type VideoMetadata struct {
	Title         string   `json:"titulo"`
	Description   string   `json:"descricao"`
	Tags          []string `json:"tags"`
	CategoryID    string   `json:"category_id,omitempty"`
	PrivacyStatus string   `json:"privacy_status,omitempty"`
}

// RunRecord is one entry of the run log.
type RunRecord struct {
	RunID    string    `json:"run_id"`
	Date     Timestamp `json:"data"`
	Topic    string    `json:"tema"`
	TopicID  string    `json:"tema_id,omitempty"`
	Title    string    `json:"titulo"`
	Duration float64   `json:"duracao"`
	Profile  string    `json:"perfil"`
	Curated  bool      `json:"curado"`
	VideoID  string    `json:"video_id,omitempty"`
	URL      string    `json:"url,omitempty"`
	File     string    `json:"arquivo,omitempty"`
}
