package models

// Question is one multiple-choice entry in the rasbras question set. Both
// teams answer the identical fixed set at their own pace.
type Question struct {
	// Prompt is the question text shown on the phone
	Prompt string `json:"prompt"`

	// Choices are the selectable answers
	Choices []string `json:"choices"`

	// CorrectIndex is the index into Choices of the right answer
	CorrectIndex int `json:"correctIndex"`
}
