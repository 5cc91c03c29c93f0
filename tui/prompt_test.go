package tui

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"obsmacros/models"
)

func TestPromptCredentials(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("obs.local\nabc\n70000\n4456\n"))

	creds, err := PromptCredentials(in, &out, func() (string, error) { return "hunter2", nil })
	if err != nil {
		t.Fatalf("PromptCredentials() error: %v", err)
	}

	want := models.Credentials{Host: "obs.local", Port: 4456, Password: "hunter2"}
	if creds != want {
		t.Errorf("credentials = %+v, want %+v", creds, want)
	}
	if n := strings.Count(out.String(), "Not a valid number. Try again:"); n != 2 {
		t.Errorf("re-prompted %d times, want 2\n%s", n, out.String())
	}
	for _, prompt := range []string{"Host:", "Port:", "Password:"} {
		if !strings.Contains(out.String(), prompt) {
			t.Errorf("output missing %q", prompt)
		}
	}
}

func TestPromptCredentialsDefaultsHostAndReadsPasswordLine(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("\n4455\nsecret"))

	creds, err := PromptCredentials(in, &out, nil)
	if err != nil {
		t.Fatalf("PromptCredentials() error: %v", err)
	}
	if creds.Host != models.DefaultHost || creds.Port != 4455 || creds.Password != "secret" {
		t.Errorf("credentials = %+v", creds)
	}
}

func TestPromptCredentialsEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := PromptCredentials(bufio.NewReader(strings.NewReader("localhost\nnope\n")), &out, nil)
	if err == nil {
		t.Fatal("PromptCredentials() succeeded on truncated input")
	}
}

func TestPromptCredentialsPasswordError(t *testing.T) {
	var out bytes.Buffer
	boom := errors.New("not a terminal")
	_, err := PromptCredentials(bufio.NewReader(strings.NewReader("h\n1\n")), &out, func() (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
}

func TestPromptCredentialsRetryKeepsBufferedInput(t *testing.T) {
	var out bytes.Buffer
	// Both attempts arrive in one read, as when input is piped.
	in := bufio.NewReader(strings.NewReader("first\n4455\nwrong\nsecond\n4456\nright\n"))

	if _, err := PromptCredentials(in, &out, nil); err != nil {
		t.Fatalf("first PromptCredentials() error: %v", err)
	}
	creds, err := PromptCredentials(in, &out, nil)
	if err != nil {
		t.Fatalf("second PromptCredentials() error: %v", err)
	}
	want := models.Credentials{Host: "second", Port: 4456, Password: "right"}
	if creds != want {
		t.Errorf("credentials = %+v, want %+v", creds, want)
	}
}
