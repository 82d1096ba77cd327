package model

// Identity is the signed-in user as asserted by the host identity provider.
type Identity struct {
	UserID   string
	Username string
	Emails   []string
	// Token is the raw bearer token, forwarded to the upstream backend.
	Token string
}

// DisplayName prefers the handle and falls back to the first email address.
func (i Identity) DisplayName() string {
	if i.Username != "" {
		return i.Username
	}
	if len(i.Emails) > 0 {
		return i.Emails[0]
	}
	return ""
}

// TopBar is the static header shown during an attempt.
type TopBar struct {
	DisplayName string `json:"display_name"`
	Title       string `json:"title"`
	ExitHref    string `json:"exit_href"`
}

// NewTopBar builds the header for the given quiz title.
func NewTopBar(id Identity, quizTitle string) TopBar {
	return TopBar{
		DisplayName: id.DisplayName(),
		Title:       "Quiz: " + quizTitle,
		ExitHref:    "/",
	}
}
