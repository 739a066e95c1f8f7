package imagegen

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	URL string `json:"url"`
}
