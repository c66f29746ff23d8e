package login

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/jobscout/internal/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedDriver records calls and returns scripted failures.
type scriptedDriver struct {
	navigated    []string
	waited       []string
	filled       map[string]string
	clicked      []string
	waitErr      error
	errorMarkers int
	countErr     error
}

func newScriptedDriver() *scriptedDriver {
	return &scriptedDriver{filled: make(map[string]string)}
}

func (d *scriptedDriver) Navigate(_ context.Context, url string) error {
	d.navigated = append(d.navigated, url)
	return nil
}

func (d *scriptedDriver) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	d.waited = append(d.waited, selector)
	return d.waitErr
}

func (d *scriptedDriver) SendKeys(_ context.Context, selector, text string) error {
	d.filled[selector] = text
	return nil
}

func (d *scriptedDriver) Click(_ context.Context, selector string) error {
	d.clicked = append(d.clicked, selector)
	return nil
}

func (d *scriptedDriver) CountMatches(_ context.Context, _ string) (int, error) {
	return d.errorMarkers, d.countErr
}

var testSelectors = classify.LoginSelectors{
	Username: "#user",
	Password: "#pass",
	Submit:   "#go",
}

func fastExecutor(d Driver, generic, linkedin Credentials) *Executor {
	return NewExecutor(d, generic, linkedin).WithTimeouts(10*time.Millisecond, time.Millisecond)
}

func TestLogin_Success(t *testing.T) {
	d := newScriptedDriver()
	e := fastExecutor(d, Credentials{Username: "u@example.com", Password: "pw"}, Credentials{})

	err := e.Login(context.Background(), "https://x.com/login", testSelectors)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://x.com/login"}, d.navigated)
	assert.Equal(t, "u@example.com", d.filled["#user"])
	assert.Equal(t, "pw", d.filled["#pass"])
	assert.Equal(t, []string{"#go"}, d.clicked)
}

func TestLogin_ErrorMarkerMeansFailure(t *testing.T) {
	d := newScriptedDriver()
	d.errorMarkers = 1
	e := fastExecutor(d, Credentials{Username: "u", Password: "p"}, Credentials{})

	err := e.Login(context.Background(), "https://x.com/login", testSelectors)
	require.Error(t, err)

	var loginErr *Error
	assert.ErrorAs(t, err, &loginErr)
	assert.Contains(t, err.Error(), "login rejected")
}

func TestLogin_UsernameFieldTimeout(t *testing.T) {
	d := newScriptedDriver()
	d.waitErr = errors.New("timeout")
	e := fastExecutor(d, Credentials{Username: "u", Password: "p"}, Credentials{})

	err := e.Login(context.Background(), "https://x.com/login", testSelectors)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username field not found")
	assert.Empty(t, d.clicked)
}

func TestLogin_MissingCredentials(t *testing.T) {
	d := newScriptedDriver()
	e := fastExecutor(d, Credentials{}, Credentials{})

	err := e.Login(context.Background(), "https://x.com/login", testSelectors)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials not configured")
	assert.Empty(t, d.navigated) // never touches the page
}

func TestLogin_LinkedInUsesFixedFormAndCreds(t *testing.T) {
	d := newScriptedDriver()
	e := fastExecutor(d,
		Credentials{Username: "generic", Password: "gp"},
		Credentials{Username: "li@example.com", Password: "lp"},
	)

	err := e.Login(context.Background(), "https://www.linkedin.com/jobs/view/42", testSelectors)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://www.linkedin.com/login"}, d.navigated)
	assert.Equal(t, "li@example.com", d.filled["#username"])
	assert.Equal(t, "lp", d.filled["#password"])
	assert.Equal(t, []string{"button[type='submit']"}, d.clicked)
}

func TestHasCredentialsFor(t *testing.T) {
	d := newScriptedDriver()

	e := fastExecutor(d, Credentials{Username: "u", Password: "p"}, Credentials{})
	assert.True(t, e.HasCredentialsFor("https://x.com/login"))
	assert.False(t, e.HasCredentialsFor("https://www.linkedin.com/login"))

	e = fastExecutor(d, Credentials{}, Credentials{Username: "l", Password: "p"})
	assert.False(t, e.HasCredentialsFor("https://x.com/login"))
	assert.True(t, e.HasCredentialsFor("https://linkedin.com/jobs/1"))
}

func TestIsLinkedIn(t *testing.T) {
	assert.True(t, isLinkedIn("https://www.linkedin.com/jobs/view/42"))
	assert.True(t, isLinkedIn("https://linkedin.com/login"))
	assert.False(t, isLinkedIn("https://notlinkedin.com.evil.example/login"))
	assert.False(t, isLinkedIn("https://x.com/linkedin"))
	assert.False(t, isLinkedIn("://bad"))
}
