package service

import (
	"context"
	"testing"

	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/notify"
	"github.com/quizdesk/quizdesk-web/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() model.GenerateQuizRequest {
	return model.GenerateQuizRequest{
		Title:          "Biology midterm",
		FileIDs:        []string{"doc-1", "doc-2"},
		TimeLimit:      90,
		TotalQuestions: 10,
		QuestionsType:  []model.QuestionType{model.QuestionTypeSingleSelect, model.QuestionTypeOpenText},
		Difficulty:     model.DifficultyMedium,
	}
}

func newQuizFormFixture() (*QuizFormService, *fakeUpstream, *repository.MemoryStore, *notify.Recorder) {
	up := &fakeUpstream{}
	store := repository.NewMemoryStore()
	rec := notify.NewRecorder()
	docs := NewDocumentService(up, store, zerolog.Nop())
	return NewQuizFormService(up, docs, store, rec, zerolog.Nop()), up, store, rec
}

func TestQuizFormSubmitSuccess(t *testing.T) {
	svc, up, store, rec := newQuizFormFixture()
	ctx := context.Background()
	require.NoError(t, store.SaveDraft(ctx, testIdentity.UserID, &model.GenerateQuizRequest{Title: "old"}))

	res, err := svc.Submit(ctx, testIdentity, validForm())
	require.NoError(t, err)
	assert.Equal(t, "/quiz", res.Redirect)
	assert.Equal(t, "quiz-1", res.Quiz.ID)

	require.Equal(t, 1, up.generateCalls())
	sent := up.generated[0]
	assert.Equal(t, "PT1H30M", sent.TimeLimit)
	assert.Equal(t, 10, sent.TotalQuestions)
	assert.Equal(t, []string{"doc-1", "doc-2"}, sent.UserFileIDs)

	draft, err := svc.Draft(ctx, testIdentity)
	require.NoError(t, err)
	assert.Nil(t, draft)

	toasts := rec.Toasts(testIdentity.UserID)
	require.Len(t, toasts, 1)
	assert.Equal(t, model.Toast{Kind: model.ToastSuccess, Title: "Quiz Generated Successfully", Description: "Biology midterm"}, toasts[0])
}

func TestQuizFormMissingFieldsMakeNoCall(t *testing.T) {
	cases := map[string]struct {
		field  string
		mutate func(*model.GenerateQuizRequest)
	}{
		"empty title":       {"title", func(f *model.GenerateQuizRequest) { f.Title = "" }},
		"blank title":       {"title", func(f *model.GenerateQuizRequest) { f.Title = " \t  " }},
		"no files":          {"file_ids", func(f *model.GenerateQuizRequest) { f.FileIDs = nil }},
		"blank file id":     {"file_ids[1]", func(f *model.GenerateQuizRequest) { f.FileIDs = []string{"doc-1", "  "} }},
		"no question types": {"questions_type", func(f *model.GenerateQuizRequest) { f.QuestionsType = nil }},
		"bad difficulty":    {"difficulty", func(f *model.GenerateQuizRequest) { f.Difficulty = "extreme" }},
		"no time limit":     {"time_limit", func(f *model.GenerateQuizRequest) { f.TimeLimit = 0 }},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc, up, _, rec := newQuizFormFixture()
			form := validForm()
			tc.mutate(&form)

			_, err := svc.Submit(context.Background(), testIdentity, form)
			var fe *FormError
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe.Fields, tc.field)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, up.generateCalls())
			assert.Empty(t, rec.Events(testIdentity.UserID))
		})
	}
}

func TestQuizFormRejectedKeepsDraft(t *testing.T) {
	svc, up, _, rec := newQuizFormFixture()
	up.generateError = "not enough content in documents"
	ctx := context.Background()

	_, err := svc.Submit(ctx, testIdentity, validForm())
	assert.ErrorIs(t, err, ErrUpstreamRejected)

	draft, err := svc.Draft(ctx, testIdentity)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "Biology midterm", draft.Title)

	toasts := rec.Toasts(testIdentity.UserID)
	require.Len(t, toasts, 1)
	assert.Equal(t, "Failed to generate quiz", toasts[0].Title)
	assert.Equal(t, "not enough content in documents", toasts[0].Description)
}

func TestQuizFormTransportFailure(t *testing.T) {
	svc, up, _, rec := newQuizFormFixture()
	up.generateErr = errConnRefused

	_, err := svc.Submit(context.Background(), testIdentity, validForm())
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, errConnRefused)

	toasts := rec.Toasts(testIdentity.UserID)
	require.Len(t, toasts, 1)
	assert.Equal(t, "An error occurred while generating the quiz.", toasts[0].Description)
}

func TestQuizFormIdenticalSubmissionsBothReachUpstream(t *testing.T) {
	svc, up, _, _ := newQuizFormFixture()
	ctx := context.Background()

	_, err := svc.Submit(ctx, testIdentity, validForm())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, testIdentity, validForm())
	require.NoError(t, err)
	assert.Equal(t, 2, up.generateCalls())
}

func TestBuildPayloadDedupes(t *testing.T) {
	form := validForm()
	form.FileIDs = []string{"a", "b", "a"}
	form.QuestionsType = []model.QuestionType{model.QuestionTypeMultiSelect, model.QuestionTypeMultiSelect}
	form.Title = "  Spaced  "

	p := BuildPayload(form)
	assert.Equal(t, []string{"a", "b"}, p.UserFileIDs)
	assert.Equal(t, []model.QuestionType{model.QuestionTypeMultiSelect}, p.QuestionsType)
	assert.Equal(t, "Spaced", p.Title)
}

func TestMinutesToDuration(t *testing.T) {
	cases := map[int]string{
		0:    "PT0M",
		1:    "PT1M",
		30:   "PT30M",
		60:   "PT1H",
		90:   "PT1H30M",
		120:  "PT2H",
		1440: "PT24H",
	}
	for in, want := range cases {
		assert.Equal(t, want, MinutesToDuration(in), "minutes=%d", in)
	}
}

func TestFormOptionsIncludesStaticLists(t *testing.T) {
	svc, up, _, _ := newQuizFormFixture()
	up.pages = map[int]model.DocumentPage{1: {Total: 1, Data: []model.DocumentMeta{{ID: "d1", FileName: "a.pdf"}}}}

	opts, err := svc.FormOptions(context.Background(), testIdentity, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.DocumentOption{{Value: "d1", Label: "a.pdf"}}, opts.Documents)
	assert.Len(t, opts.QuestionTypes, 3)
	assert.Len(t, opts.DifficultyLevels, 3)
}
