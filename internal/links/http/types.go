package http

// createReq carries the form fields of a new project link. Name,
// description and URL are required; the store defaults the category.
type createReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
}
