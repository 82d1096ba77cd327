package model

import "encoding/json"

// MCQOption is one selectable option of a choice question.
type MCQOption struct {
	ID         string `json:"id"`
	OptionText string `json:"option_text"`
}

// Question is one generated quiz question.
type Question struct {
	ID           string       `json:"id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	MCQOptions   []MCQOption  `json:"mcq_options"`
}

// Attempt is one user's run through a generated quiz.
type Attempt struct {
	ID        string     `json:"id"`
	QuizTitle string     `json:"quiz_title"`
	Questions []Question `json:"questions"`
}

// AttemptStatus enumerates attempt lifecycle states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusCompleted  AttemptStatus = "completed"
)

// AttemptState holds the current-question pointer of an attempt.
type AttemptState struct {
	AttemptID string        `json:"attempt_id"`
	Current   int           `json:"current"`
	Total     int           `json:"total"`
	Status    AttemptStatus `json:"status"`
}

// QuizAttemptAnswer is the payload persisted upstream for one question.
// Exactly one of SelectedOptions or AnswerText is meaningful, chosen by
// QuestionType.
type QuizAttemptAnswer struct {
	AttemptID       string
	QuestionID      string
	QuestionType    QuestionType
	SelectedOptions []string
	AnswerText      string
}

// MarshalJSON emits only the payload shape matching the question type.
func (a QuizAttemptAnswer) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"attemptId":    a.AttemptID,
		"questionId":   a.QuestionID,
		"questionType": a.QuestionType,
	}
	if a.QuestionType.IsChoice() {
		selected := a.SelectedOptions
		if selected == nil {
			selected = []string{}
		}
		out["selectedOptions"] = selected
	} else {
		out["answerText"] = a.AnswerText
	}
	return json.Marshal(out)
}

// SubmitAnswerRequest is the answer form as posted by the user. Which field
// is allowed depends on the current question's type.
type SubmitAnswerRequest struct {
	QuestionID      string   `json:"question_id" binding:"required"`
	SelectedOption  *string  `json:"selected_option"`
	SelectedOptions []string `json:"selected_options"`
	AnswerText      *string  `json:"answer_text"`
}

// QuestionView is everything needed to render the current question.
type QuestionView struct {
	AttemptID       string        `json:"attempt_id"`
	Status          AttemptStatus `json:"status"`
	Question        *Question     `json:"question,omitempty"`
	CurrentQuestion int           `json:"current_question"`
	TotalQuestions  int           `json:"total_questions"`
	IsLastQuestion  bool          `json:"is_last_question"`
	SubmitLabel     string        `json:"submit_label,omitempty"`
	TopBar          TopBar        `json:"top_bar"`
}

// SubmitAnswerResult tells the client where the attempt went after a save.
type SubmitAnswerResult struct {
	Finalized bool          `json:"finalized"`
	Next      *QuestionView `json:"next,omitempty"`
}
