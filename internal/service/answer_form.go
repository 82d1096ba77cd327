package service

import (
	"strings"

	"github.com/quizdesk/quizdesk-web/internal/model"
)

// AnswerForm is one answer-form variant bound to a question.
type AnswerForm interface {
	QuestionType() model.QuestionType
	Validate() error
	Answer(attemptID string) model.QuizAttemptAnswer
}

// SingleSelectForm accepts exactly one option id out of the question's options.
type SingleSelectForm struct {
	question model.Question
	selected string
}

// NewSingleSelectForm creates an empty single-select form for q.
func NewSingleSelectForm(q model.Question) *SingleSelectForm {
	return &SingleSelectForm{question: q}
}

// Select replaces the current choice.
func (f *SingleSelectForm) Select(optionID string) { f.selected = optionID }

func (f *SingleSelectForm) QuestionType() model.QuestionType { return model.QuestionTypeSingleSelect }

// Validate requires the choice to be one of the options, whatever their count.
func (f *SingleSelectForm) Validate() error {
	if f.selected == "" {
		return formError("selected_option", "You need to select an option.")
	}
	if !hasOption(f.question, f.selected) {
		return formError("selected_option", "Selected option does not belong to this question.")
	}
	return nil
}

func (f *SingleSelectForm) Answer(attemptID string) model.QuizAttemptAnswer {
	return model.QuizAttemptAnswer{
		AttemptID:       attemptID,
		QuestionID:      f.question.ID,
		QuestionType:    model.QuestionTypeSingleSelect,
		SelectedOptions: []string{f.selected},
	}
}

// MultiSelectForm accepts any subset of the question's options, including
// the empty one.
type MultiSelectForm struct {
	question model.Question
	selected []string
}

// NewMultiSelectForm creates an empty multi-select form for q.
func NewMultiSelectForm(q model.Question) *MultiSelectForm {
	return &MultiSelectForm{question: q, selected: []string{}}
}

// Toggle checks or unchecks one option, keeping check order.
func (f *MultiSelectForm) Toggle(optionID string, checked bool) {
	idx := -1
	for i, id := range f.selected {
		if id == optionID {
			idx = i
			break
		}
	}
	switch {
	case checked && idx < 0:
		f.selected = append(f.selected, optionID)
	case !checked && idx >= 0:
		f.selected = append(f.selected[:idx], f.selected[idx+1:]...)
	}
}

// Selected returns the checked option ids in check order.
func (f *MultiSelectForm) Selected() []string {
	return append([]string{}, f.selected...)
}

func (f *MultiSelectForm) QuestionType() model.QuestionType { return model.QuestionTypeMultiSelect }

func (f *MultiSelectForm) Validate() error {
	for _, id := range f.selected {
		if !hasOption(f.question, id) {
			return formError("selected_options", "Selected option does not belong to this question.")
		}
	}
	return nil
}

func (f *MultiSelectForm) Answer(attemptID string) model.QuizAttemptAnswer {
	return model.QuizAttemptAnswer{
		AttemptID:       attemptID,
		QuestionID:      f.question.ID,
		QuestionType:    model.QuestionTypeMultiSelect,
		SelectedOptions: f.Selected(),
	}
}

// OpenTextForm accepts free text.
type OpenTextForm struct {
	question model.Question
	text     string
}

// NewOpenTextForm creates an empty open-text form for q.
func NewOpenTextForm(q model.Question) *OpenTextForm {
	return &OpenTextForm{question: q}
}

// SetText replaces the answer text.
func (f *OpenTextForm) SetText(text string) { f.text = text }

func (f *OpenTextForm) QuestionType() model.QuestionType { return model.QuestionTypeOpenText }

func (f *OpenTextForm) Validate() error {
	if strings.TrimSpace(f.text) == "" {
		return formError("answer_text", "Answer is required.")
	}
	return nil
}

// Answer sends the text exactly as typed.
func (f *OpenTextForm) Answer(attemptID string) model.QuizAttemptAnswer {
	return model.QuizAttemptAnswer{
		AttemptID:    attemptID,
		QuestionID:   f.question.ID,
		QuestionType: model.QuestionTypeOpenText,
		AnswerText:   f.text,
	}
}

// NewAnswerForm picks the variant for q and fills it from the posted input.
// Input fields that belong to another variant are a validation failure.
func NewAnswerForm(q model.Question, in model.SubmitAnswerRequest) (AnswerForm, error) {
	switch q.QuestionType {
	case model.QuestionTypeSingleSelect:
		if in.SelectedOptions != nil || in.AnswerText != nil {
			return nil, formError("selected_option", "Single select questions take one selected_option.")
		}
		f := NewSingleSelectForm(q)
		if in.SelectedOption != nil {
			f.Select(*in.SelectedOption)
		}
		return f, nil

	case model.QuestionTypeMultiSelect:
		if in.SelectedOption != nil || in.AnswerText != nil {
			return nil, formError("selected_options", "Multi select questions take selected_options.")
		}
		f := NewMultiSelectForm(q)
		for _, id := range in.SelectedOptions {
			f.Toggle(id, true)
		}
		return f, nil

	case model.QuestionTypeOpenText:
		if in.SelectedOption != nil || in.SelectedOptions != nil {
			return nil, formError("answer_text", "Open text questions take answer_text.")
		}
		f := NewOpenTextForm(q)
		if in.AnswerText != nil {
			f.SetText(*in.AnswerText)
		}
		return f, nil
	}
	return nil, formError("question_type", "Unsupported question type.")
}

func hasOption(q model.Question, id string) bool {
	for _, opt := range q.MCQOptions {
		if opt.ID == id {
			return true
		}
	}
	return false
}
