package api

type NarrateRequest struct {
	URL string `json:"url,omitempty"`

	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

type Narration struct {
	File  string `json:"file"`
	Title string `json:"title,omitempty"`

	Duration float64 `json:"duration"`

	Segments []Segment `json:"segments"`
}

type Segment struct {
	Index    int     `json:"index"`
	Duration float64 `json:"duration"`
}

type ErrorResponse struct {
	Error Error `json:"error"`
}

type Error struct {
	Message string `json:"message"`

	Stage string `json:"stage,omitempty"`
	Index *int   `json:"index,omitempty"`
}
