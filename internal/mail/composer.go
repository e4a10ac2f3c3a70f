package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/rostercheck/internal/config"
	"github.com/JonMunkholm/rostercheck/internal/core"
)

// Template keys, one per compose link kind.
const (
	WrongCourseTemplateKey = "wrong-course-email-template"
	NoCourseTemplateKey    = "no-course-email-template"
)

// ErrUnknownTemplate is returned for keys other than the two template keys.
var ErrUnknownTemplate = errors.New("unknown email template")

// TemplateKeys returns the valid template keys in display order.
func TemplateKeys() []string {
	return []string{WrongCourseTemplateKey, NoCourseTemplateKey}
}

// ValidKey reports whether key names an email template.
func ValidKey(key string) bool {
	return key == WrongCourseTemplateKey || key == NoCourseTemplateKey
}

// Store persists template bodies by key. Get reports false for a key
// that was never set.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Composer builds compose links from the stored templates.
type Composer struct {
	store              Store
	wrongCourseSubject string
	noCourseSubject    string
}

// NewComposer creates a Composer backed by store.
func NewComposer(store Store, cfg config.MailConfig) *Composer {
	return &Composer{
		store:              store,
		wrongCourseSubject: cfg.WrongCourseSubject,
		noCourseSubject:    cfg.NoCourseSubject,
	}
}

// Template returns the body stored under key, or "" if none was saved.
func (c *Composer) Template(ctx context.Context, key string) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, key)
	}
	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return value, nil
}

// SetTemplate replaces the body stored under key.
func (c *Composer) SetTemplate(ctx context.Context, key, value string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, key)
	}
	if err := c.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Templates holds both template bodies.
type Templates struct {
	WrongCourse string `json:"wrongCourse"`
	NoCourse    string `json:"noCourse"`
}

// Templates loads both template bodies.
func (c *Composer) Templates(ctx context.Context) (Templates, error) {
	wrong, err := c.Template(ctx, WrongCourseTemplateKey)
	if err != nil {
		return Templates{}, err
	}
	none, err := c.Template(ctx, NoCourseTemplateKey)
	if err != nil {
		return Templates{}, err
	}
	return Templates{WrongCourse: wrong, NoCourse: none}, nil
}

// Links loads the current templates and returns a link builder for one report.
func (c *Composer) Links(ctx context.Context) (*Links, error) {
	t, err := c.Templates(ctx)
	if err != nil {
		return nil, err
	}
	return &Links{composer: c, templates: t}, nil
}

// WrongCourseURI returns the compose link for a wrong-course row, filling tmpl.
func (c *Composer) WrongCourseURI(tmpl string, e core.StudentInWrongCourse) string {
	return MailtoURI(MailtoParams{
		Recipients: []string{string(e.Student.SchoolEmail)},
		CC:         []string{string(e.Student.PersonalEmail)},
		Subject:    c.wrongCourseSubject,
		Body:       FillWrongCourse(tmpl, e),
	})
}

// NoCourseURI returns the compose link for a no-course row, filling tmpl.
func (c *Composer) NoCourseURI(tmpl string, e core.StudentInNoCourse) string {
	return MailtoURI(MailtoParams{
		Recipients: []string{string(e.Student.SchoolEmail)},
		CC:         []string{string(e.Student.PersonalEmail)},
		Subject:    c.noCourseSubject,
		Body:       FillNoCourse(tmpl, e),
	})
}

// Links builds compose links with templates fixed at load time, so every
// row of one report uses the same template text.
type Links struct {
	composer  *Composer
	templates Templates
}

// WrongCourse returns the compose link for a wrong-course row.
func (l *Links) WrongCourse(e core.StudentInWrongCourse) string {
	return l.composer.WrongCourseURI(l.templates.WrongCourse, e)
}

// NoCourse returns the compose link for a no-course row.
func (l *Links) NoCourse(e core.StudentInNoCourse) string {
	return l.composer.NoCourseURI(l.templates.NoCourse, e)
}
