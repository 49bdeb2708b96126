package speech

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func fakeLookPath(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestNewPicksFirstAvailableDefault(t *testing.T) {
	s := newSpeaker("", fakeLookPath("say", "espeak"))
	if !s.Available() {
		t.Fatalf("expected speaker to be available")
	}
	if s.Name() != "espeak" {
		t.Fatalf("Name() = %q, want espeak", s.Name())
	}
}

func TestNewUsesConfiguredCommand(t *testing.T) {
	s := newSpeaker("mytts --lang zh", fakeLookPath("mytts", "espeak-ng"))
	if s.Name() != "mytts" {
		t.Fatalf("Name() = %q, want mytts", s.Name())
	}
	if len(s.cmd.Args) != 2 || s.cmd.Args[1] != "zh" {
		t.Fatalf("args = %v", s.cmd.Args)
	}
}

func TestSpeakUnavailable(t *testing.T) {
	s := newSpeaker("", fakeLookPath())
	if s.Available() {
		t.Fatalf("expected no speaker")
	}
	err := s.Speak(context.Background(), "你")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSpeakRunsCommand(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	s := New("true")
	if err := s.Speak(context.Background(), "你"); err != nil {
		t.Fatalf("Speak: %v", err)
	}
}

func TestSpeakCommandFailure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	s := New("false")
	err := s.Speak(context.Background(), "你")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
