package mail

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/JonMunkholm/rostercheck/internal/config"
	"github.com/JonMunkholm/rostercheck/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abcXYZ019", "abcXYZ019"},
		{"-_.!~*'()", "-_.!~*'()"},
		{"a b", "a%20b"},
		{"a+b", "a%2Bb"},
		{"a@b.jp", "a%40b.jp"},
		{"?&=#/,;:", "%3F%26%3D%23%2F%2C%3B%3A"},
		{"改行\n", "%E6%94%B9%E8%A1%8C%0A"},
		{"100%", "100%25"},
	}

	for _, tt := range tests {
		if got := encodeURIComponent(tt.in); got != tt.want {
			t.Errorf("encodeURIComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMailtoURI(t *testing.T) {
	tests := []struct {
		name string
		p    MailtoParams
		want string
	}{
		{
			name: "empty",
			p:    MailtoParams{},
			want: "mailto:?cc=&bcc=&subject=&body=",
		},
		{
			name: "full",
			p: MailtoParams{
				Recipients: []string{"s1@u.ac.jp", "s2@u.ac.jp"},
				CC:         []string{"me+x@example.com"},
				BCC:        []string{"office@u.ac.jp"},
				Subject:    "履修 確認",
				Body:       "line1\nline2",
			},
			want: "mailto:s1%40u.ac.jp,s2%40u.ac.jp?cc=me%2Bx%40example.com&bcc=office%40u.ac.jp" +
				"&subject=%E5%B1%A5%E4%BF%AE%20%E7%A2%BA%E8%AA%8D&body=line1%0Aline2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MailtoURI(tt.p); got != tt.want {
				t.Errorf("MailtoURI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMailtoURI_RoundTrip(t *testing.T) {
	body := "学籍番号: 24A001\n& 100% = ok?"
	u, err := url.Parse(MailtoURI(MailtoParams{Recipients: []string{"a@b"}, Body: body}))
	require.NoError(t, err)
	assert.Equal(t, body, u.Query().Get("body"))
}

var (
	math101 = core.Course{ID: "MATH101", Name: "Calculus", TargetName: "数学A"}
	phys201 = core.Course{ID: "PHYS201", Name: "Mechanics", TargetName: "物理B"}
	taro    = core.Student{ID: "24A001", Name: "山田太郎", SchoolEmail: "taro@u.ac.jp", PersonalEmail: "taro@example.com"}
)

func TestFillWrongCourse(t *testing.T) {
	e := core.StudentInWrongCourse{Student: taro, RegisteredCourse: phys201, ExpectedCourse: math101}
	tmpl := "$student_name ($student_id): $expected_course_id/$expected_course_target, " +
		"not $registered_course_id/$registered_course_target. $student_id again."

	got := FillWrongCourse(tmpl, e)
	want := "山田太郎 (24A001): MATH101/数学A, not PHYS201/物理B. 24A001 again."
	assert.Equal(t, want, got)
}

func TestFillNoCourse(t *testing.T) {
	e := core.StudentInNoCourse{Student: taro, ExpectedCourse: math101}
	tmpl := "$student_name: $expected_course_id ($expected_course_target) $registered_course_id"

	got := FillNoCourse(tmpl, e)
	assert.Equal(t, "山田太郎: MATH101 (数学A) $registered_course_id", got)
}

// Filling is one pass over the template: placeholder text carried in by a
// substituted value stays literal, even for placeholders that come later in
// the template's substitution order.
func TestFill_SinglePass(t *testing.T) {
	tests := []struct {
		name string
		fill func() string
		want string
	}{
		{
			name: "name holding an earlier placeholder",
			fill: func() string {
				s := taro
				s.Name = "$student_id"
				return FillNoCourse("$student_name", core.StudentInNoCourse{Student: s, ExpectedCourse: math101})
			},
			want: "$student_id",
		},
		{
			name: "name holding a later placeholder",
			fill: func() string {
				s := taro
				s.Name = "$expected_course_id"
				return FillNoCourse("$student_name: $expected_course_id", core.StudentInNoCourse{Student: s, ExpectedCourse: math101})
			},
			want: "$expected_course_id: MATH101",
		},
		{
			name: "course target holding a registered placeholder",
			fill: func() string {
				expected := math101
				expected.TargetName = "$registered_course_target"
				e := core.StudentInWrongCourse{Student: taro, RegisteredCourse: phys201, ExpectedCourse: expected}
				return FillWrongCourse("$expected_course_target / $registered_course_target", e)
			},
			want: "$registered_course_target / 物理B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fill(), "substituted values are not expanded again")
		})
	}
}

type memStore map[string]string

func (m memStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memStore) Set(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("template store: connection refused")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("template store: connection refused")
}

func TestComposer_Templates(t *testing.T) {
	ctx := context.Background()
	c := NewComposer(memStore{}, config.MailConfig{})

	got, err := c.Templates(ctx)
	require.NoError(t, err)
	assert.Equal(t, Templates{}, got, "unset templates read as empty")

	require.NoError(t, c.SetTemplate(ctx, WrongCourseTemplateKey, "wrong"))
	require.NoError(t, c.SetTemplate(ctx, NoCourseTemplateKey, "none"))

	got, err = c.Templates(ctx)
	require.NoError(t, err)
	assert.Equal(t, Templates{WrongCourse: "wrong", NoCourse: "none"}, got)
}

func TestComposer_UnknownKey(t *testing.T) {
	ctx := context.Background()
	c := NewComposer(memStore{}, config.MailConfig{})

	_, err := c.Template(ctx, "other")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
	assert.ErrorIs(t, c.SetTemplate(ctx, "other", "x"), ErrUnknownTemplate)
	assert.Equal(t, "TPL001", core.MapError(err).Code)
}

func TestComposer_StoreFailure(t *testing.T) {
	c := NewComposer(failingStore{}, config.MailConfig{})

	_, err := c.Links(context.Background())
	require.Error(t, err)
	assert.Equal(t, "TPL002", core.MapError(err).Code)
}

func TestComposer_Links(t *testing.T) {
	ctx := context.Background()
	store := memStore{
		WrongCourseTemplateKey: "$registered_course_id -> $expected_course_id",
		NoCourseTemplateKey:    "register $expected_course_id",
	}
	c := NewComposer(store, config.MailConfig{WrongCourseSubject: "wrong", NoCourseSubject: "none"})

	links, err := c.Links(ctx)
	require.NoError(t, err)

	// The two kinds use their own template; a no-course link never uses
	// the wrong-course body.
	wrong := links.WrongCourse(core.StudentInWrongCourse{Student: taro, RegisteredCourse: phys201, ExpectedCourse: math101})
	assert.Equal(t,
		"mailto:taro%40u.ac.jp?cc=taro%40example.com&bcc=&subject=wrong&body=PHYS201%20-%3E%20MATH101",
		wrong)

	none := links.NoCourse(core.StudentInNoCourse{Student: taro, ExpectedCourse: math101})
	assert.Equal(t,
		"mailto:taro%40u.ac.jp?cc=taro%40example.com&bcc=&subject=none&body=register%20MATH101",
		none)

	// Links keep the templates read at load time.
	store[NoCourseTemplateKey] = "changed"
	assert.Equal(t, none, links.NoCourse(core.StudentInNoCourse{Student: taro, ExpectedCourse: math101}))
}
