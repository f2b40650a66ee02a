package types

// Draft is one compose surface: its recipient fields and content. The
// surface ID doubles as the draft key.
type Draft struct {
	SurfaceID  string         `json:"surface_id"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	Recipients ComposeDetails `json:"recipients"`
	CreatedAt  int64          `json:"created_at"`
	UpdatedAt  int64          `json:"updated_at"`
}
