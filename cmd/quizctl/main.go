// Command quizctl drives the quiz services from a terminal: upload PDFs,
// generate a quiz and take an attempt.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/quizdesk/quizdesk-web/internal/backend"
	"github.com/quizdesk/quizdesk-web/internal/config"
	"github.com/quizdesk/quizdesk-web/internal/logger"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/repository"
	"github.com/quizdesk/quizdesk-web/internal/service"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

// app wires the services against in-memory stores.
type app struct {
	id       model.Identity
	uploads  *service.UploadService
	forms    *service.QuizFormService
	attempts *service.AttemptService
	answers  *service.AnswerService
	in       *bufio.Reader
	out      io.Writer
}

func main() {
	cfg := config.Load()

	upstreamURL := flag.String("upstream", cfg.UpstreamURL, "base URL of the quiz backend")
	timeout := flag.Duration("timeout", cfg.UpstreamTimeout, "upstream request timeout")
	verbose := flag.BoolP("verbose", "v", false, "log debug output to stderr")
	flag.Usage = usage
	flag.CommandLine.SetInterspersed(false)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.New(os.Stderr, level, "pretty")

	token, err := readToken()
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(identityFromToken(token), backend.NewHTTPClient(strings.TrimRight(*upstreamURL, "/"), *timeout), cfg.MaxUploadBytes, log)

	switch args[0] {
	case "upload":
		err = a.upload(ctx, args[1:])
	case "generate":
		err = a.generate(ctx, args[1:])
	case "take":
		err = a.take(ctx, args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func newApp(id model.Identity, upstream backend.Client, maxBytes int64, log zerolog.Logger) *app {
	store := repository.NewMemoryStore()
	console := newConsoleNotifier(os.Stdout)

	docs := service.NewDocumentService(upstream, store, log)
	ui := service.NewUIStateService(store, console)
	attempts := service.NewAttemptService(upstream, store, console, log)

	return &app{
		id:       id,
		uploads:  service.NewUploadService(upstream, docs, ui, console, nil, maxBytes, log),
		forms:    service.NewQuizFormService(upstream, docs, store, console, log),
		attempts: attempts,
		answers:  service.NewAnswerService(upstream, attempts, log),
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: quizctl [flags] <command> [args]

Commands:
  upload <file.pdf>...          upload PDFs as quiz sources
  generate [flags]              generate a quiz from uploaded documents
  take <attempt-id>             answer an attempt question by question

The bearer token is read from QUIZDESK_TOKEN or prompted for.

Flags:
`)
	flag.PrintDefaults()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
	os.Exit(1)
}

// readToken prefers QUIZDESK_TOKEN and otherwise prompts without echo.
func readToken() (string, error) {
	if tok := strings.TrimSpace(os.Getenv("QUIZDESK_TOKEN")); tok != "" {
		return tok, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("QUIZDESK_TOKEN is not set and stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Bearer token: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	tok := strings.TrimSpace(string(raw))
	if tok == "" {
		return "", errors.New("empty token")
	}
	return tok, nil
}

// identityFromToken reads display claims without verifying the signature.
// The upstream verifies the token; quizctl only needs a name to show.
func identityFromToken(token string) model.Identity {
	id := model.Identity{UserID: "cli", Token: token}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return id
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		id.UserID = sub
	}
	if name, ok := claims["username"].(string); ok {
		id.Username = name
	}
	if emails, ok := claims["emails"].([]interface{}); ok {
		for _, e := range emails {
			if s, ok := e.(string); ok {
				id.Emails = append(id.Emails, s)
			}
		}
	}
	return id
}

func (a *app) upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return errors.New("upload needs at least one file")
	}

	files := make([]model.UploadedFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", p)
		}
		path := p
		files = append(files, model.UploadedFile{
			Name: filepath.Base(path),
			Size: info.Size(),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}

	report, err := a.uploads.Run(ctx, a.id, files)
	if err != nil {
		return describe(err)
	}
	for _, o := range report.Outcomes {
		if o.Document != nil {
			fmt.Fprintf(a.out, "%s  %s\n", color.GreenString(o.Document.ID), o.FileName)
		}
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", report.Failed, report.Total)
	}
	return nil
}

func (a *app) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	title := fs.StringP("title", "t", "", "quiz title")
	fileIDs := fs.StringSlice("file-id", nil, "document id to generate from (repeatable)")
	timeLimit := fs.Int("time-limit", 30, "time limit in minutes")
	questions := fs.IntP("questions", "n", 10, "number of questions to generate")
	types := fs.StringSlice("type", []string{string(model.QuestionTypeSingleSelect)}, "question type (repeatable)")
	difficulty := fs.StringP("difficulty", "d", string(model.DifficultyMedium), "easy, medium or hard")
	prompt := fs.String("prompt", "", "extra instructions for the generator")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := model.GenerateQuizRequest{
		Title:          *title,
		FileIDs:        *fileIDs,
		TimeLimit:      model.NumberInput(*timeLimit),
		TotalQuestions: model.NumberInput(*questions),
		Difficulty:     model.Difficulty(*difficulty),
		UserPrompt:     *prompt,
	}
	for _, t := range *types {
		form.QuestionsType = append(form.QuestionsType, model.QuestionType(t))
	}

	res, err := a.forms.Submit(ctx, a.id, form)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "%s %s\n", color.GreenString(res.Quiz.ID), res.Quiz.Title)
	return nil
}

func (a *app) take(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("take needs exactly one attempt id")
	}
	attemptID := args[0]

	view, err := a.attempts.Current(ctx, a.id, attemptID)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintln(a.out, color.New(color.Bold).Sprint(view.TopBar.Title), color.HiBlackString("(%s)", view.TopBar.DisplayName))

	for view != nil && view.Question != nil {
		in, err := a.ask(view)
		if err != nil {
			return err
		}

		res, err := a.answers.Submit(ctx, a.id, attemptID, in)
		if err != nil {
			var fe *service.FormError
			if errors.As(err, &fe) {
				fmt.Fprintln(a.out, color.YellowString(describe(err).Error()))
				continue
			}
			return describe(err)
		}
		if res.Finalized {
			return nil
		}
		view = res.Next
	}
	fmt.Fprintln(a.out, "This attempt is already completed.")
	return nil
}

// ask renders one question and reads the answer in the shape its type needs.
func (a *app) ask(view *model.QuestionView) (model.SubmitAnswerRequest, error) {
	q := view.Question
	fmt.Fprintf(a.out, "\n%s %s\n", color.CyanString("[%d/%d]", view.CurrentQuestion, view.TotalQuestions), q.QuestionText)
	for i, opt := range q.MCQOptions {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, opt.OptionText)
	}

	req := model.SubmitAnswerRequest{QuestionID: q.ID}
	switch q.QuestionType {
	case model.QuestionTypeSingleSelect:
		fmt.Fprintf(a.out, "Choose one [%s]: ", view.SubmitLabel)
	case model.QuestionTypeMultiSelect:
		fmt.Fprintf(a.out, "Choose any, comma separated [%s]: ", view.SubmitLabel)
	default:
		fmt.Fprintf(a.out, "Your answer [%s]: ", view.SubmitLabel)
	}

	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return req, err
	}
	line = strings.TrimRight(line, "\r\n")

	switch q.QuestionType {
	case model.QuestionTypeSingleSelect:
		id := optionID(q, strings.TrimSpace(line))
		req.SelectedOption = &id
	case model.QuestionTypeMultiSelect:
		req.SelectedOptions = []string{}
		for _, part := range strings.Split(line, ",") {
			if part = strings.TrimSpace(part); part != "" {
				req.SelectedOptions = append(req.SelectedOptions, optionID(q, part))
			}
		}
	default:
		req.AnswerText = &line
	}
	return req, nil
}

// optionID maps a 1-based menu number to its option id. Anything else is
// passed through and left to validation.
func optionID(q *model.Question, choice string) string {
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(q.MCQOptions) {
		return q.MCQOptions[n-1].ID
	}
	return choice
}

func describe(err error) error {
	var fe *service.FormError
	if errors.As(err, &fe) {
		return fe
	}
	var ue *service.UpstreamError
	if errors.As(err, &ue) {
		return errors.New(ue.Message)
	}
	if errors.Is(err, service.ErrUpstreamUnavailable) {
		return fmt.Errorf("quiz backend unreachable (%w)", err)
	}
	return err
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
