package models

type ScoreRequest struct {
	Idea       string                 `json:"idea_or_problem_and_solution" validate:"required"`
	Parameters map[string]interface{} `json:"parameters" validate:"required"`
}

type EnqueueResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type AssessmentPage struct {
	Items      []Assessment `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	Total      int64        `json:"total"`
	TotalPages int          `json:"total_pages"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}
