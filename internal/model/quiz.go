package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// QuestionType enumerates the answer-form variants a question renders as.
type QuestionType string

const (
	QuestionTypeSingleSelect QuestionType = "single_select_mcq"
	QuestionTypeMultiSelect  QuestionType = "multi_select_mcq"
	QuestionTypeOpenText     QuestionType = "open_text_question"
)

// IsChoice reports whether answers of this type carry selected options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingleSelect || t == QuestionTypeMultiSelect
}

// Difficulty enumerates the generation difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionTypeOption is one checkbox of the question-type selector.
type QuestionTypeOption struct {
	ID    QuestionType `json:"id"`
	Label string       `json:"label"`
}

// DifficultyOption is one radio item of the difficulty selector.
type DifficultyOption struct {
	Value Difficulty `json:"value"`
	Label string     `json:"label"`
}

// QuestionTypes is the static option list behind the question-type checkboxes.
var QuestionTypes = []QuestionTypeOption{
	{ID: QuestionTypeSingleSelect, Label: "Single select MCQ"},
	{ID: QuestionTypeMultiSelect, Label: "Multi select MCQ"},
	{ID: QuestionTypeOpenText, Label: "Open text question"},
}

// DifficultyLevels is the static option list behind the difficulty radio group.
var DifficultyLevels = []DifficultyOption{
	{Value: DifficultyEasy, Label: "Easy"},
	{Value: DifficultyMedium, Label: "Medium"},
	{Value: DifficultyHard, Label: "Hard"},
}

// NumberInput accepts a JSON number or a numeric string, the way HTML number
// inputs post their value.
type NumberInput int

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumberInput) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = 0
			return nil
		}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("not a whole number: %q", raw)
	}
	*n = NumberInput(v)
	return nil
}

// GenerateQuizRequest is the quiz generation form as submitted by the user.
type GenerateQuizRequest struct {
	Title          string         `json:"title" binding:"required,notblank,max=200"`
	FileIDs        []string       `json:"file_ids" binding:"required,min=1,dive,notblank"`
	TimeLimit      NumberInput    `json:"time_limit" binding:"required,min=1,max=1440"`
	TotalQuestions NumberInput    `json:"total_questions_to_generate" binding:"required,min=1,max=100"`
	QuestionsType  []QuestionType `json:"questions_type" binding:"required,min=1,dive,oneof=single_select_mcq multi_select_mcq open_text_question"`
	Difficulty     Difficulty     `json:"difficulty" binding:"required,oneof=easy medium hard"`
	UserPrompt     string         `json:"user_prompt" binding:"max=4000"`
}

// GenerateQuizPayload is what the upstream generation endpoint receives.
type GenerateQuizPayload struct {
	Title          string         `json:"title"`
	TimeLimit      string         `json:"time_limit"`
	TotalQuestions int            `json:"total_questions_to_generate"`
	QuestionsType  []QuestionType `json:"questions_type"`
	Difficulty     Difficulty     `json:"difficulty"`
	UserPrompt     string         `json:"user_prompt"`
	UserFileIDs    []string       `json:"user_file_ids"`
}

// GeneratedQuiz is the upstream reply to a successful generation.
type GeneratedQuiz struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// GenerateQuizResult is returned to the form after a successful generation.
type GenerateQuizResult struct {
	Quiz     GeneratedQuiz `json:"quiz"`
	Redirect string        `json:"redirect"`
}

// FormOptions feeds every selector of the generation form.
type FormOptions struct {
	Documents        []DocumentOption     `json:"documents"`
	QuestionTypes    []QuestionTypeOption `json:"question_types"`
	DifficultyLevels []DifficultyOption   `json:"difficulty_levels"`
}
