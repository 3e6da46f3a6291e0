package models

// PracticeQuestion is one extracted question with its answer and explanation,
// each an HTML fragment. Answer and explanation are empty strings when absent.
type PracticeQuestion struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

// PracticeRequest is the payload of POST /api/practice.
type PracticeRequest struct {
	Subject        string `json:"subject"`
	Grade          string `json:"grade"`
	Topic          string `json:"topic,omitempty"`
	Count          *int   `json:"count,omitempty"`
	IncludeAnswers *bool  `json:"includeAnswers,omitempty"`
}

// QuestionCount returns the requested count, defaulting to 3.
func (r *PracticeRequest) QuestionCount() int {
	if r.Count == nil {
		return 3
	}
	return *r.Count
}

// WantsAnswers returns includeAnswers, defaulting to true.
func (r *PracticeRequest) WantsAnswers() bool {
	if r.IncludeAnswers == nil {
		return true
	}
	return *r.IncludeAnswers
}

// PracticeResponse is the body returned by POST /api/practice.
type PracticeResponse struct {
	Questions []PracticeQuestion `json:"questions"`
}
