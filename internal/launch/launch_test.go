package launch

import (
	"bufio"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com", true},
		{"steam://rungameid/1", true},
		{"firefox", false},
		{"/usr/bin/firefox", false},
		{"://nothing", false},
		{"we ird://x", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.in); got != tt.want {
			t.Fatalf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDesktopExec(t *testing.T) {
	entry := strings.Join([]string{
		"[Desktop Action new-window]",
		"Exec=/usr/bin/wrong --new-window",
		"[Desktop Entry]",
		"Name=Browser",
		`Exec=/opt/browser/bin "--profile dir" %u`,
		"",
	}, "\n")

	argv, err := parseDesktopExec(bufio.NewScanner(strings.NewReader(entry)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"/opt/browser/bin", "--profile dir", "%u"}
	if !reflect.DeepEqual(argv, want) {
		t.Fatalf("expected %v, got %v", want, argv)
	}
}

func TestParseDesktopExecMissing(t *testing.T) {
	_, err := parseDesktopExec(bufio.NewScanner(strings.NewReader("[Desktop Entry]\nName=x\n")))
	if err == nil {
		t.Fatalf("expected error for entry without Exec")
	}
}

func TestExpandFieldCodes(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want []string
	}{
		{"placeholder", []string{"firefox", "%u"}, []string{"firefox", "https://x"}},
		{"dropped codes", []string{"app", "%i", "%U", "--x=100%%"}, []string{"app", "https://x", "--x=100%"}},
		{"no placeholder", []string{"app"}, []string{"app", "https://x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandFieldCodes(tt.argv, "https://x")
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestURLCommandFallsBackToXdgOpen(t *testing.T) {
	l := New(nil)
	l.handler = func(context.Context, string) ([]string, error) {
		return nil, errors.New("none")
	}
	got := l.urlCommand(context.Background(), "https://x", []string{"--extra"})
	want := []string{"xdg-open", "https://x", "--extra"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestURLCommandUsesHandler(t *testing.T) {
	l := New(nil)
	var gotScheme string
	l.handler = func(_ context.Context, scheme string) ([]string, error) {
		gotScheme = scheme
		return []string{"browser", "%u"}, nil
	}
	got := l.urlCommand(context.Background(), "HTTPS://x", nil)
	if gotScheme != "https" {
		t.Fatalf("expected lowercased scheme, got %q", gotScheme)
	}
	if !reflect.DeepEqual(got, []string{"browser", "HTTPS://x"}) {
		t.Fatalf("unexpected argv %v", got)
	}
}

func TestStartRejectsEmptyTarget(t *testing.T) {
	if _, err := New(nil).Start(context.Background(), " ", nil); err == nil {
		t.Fatalf("expected error for empty target")
	}
}
