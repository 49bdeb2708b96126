// Package speech pronounces characters through an external text-to-speech command.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrUnavailable means no speech command could be found or it failed.
var ErrUnavailable = errors.New("speech unavailable")

// Speaker pronounces text.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Command runs Name with Args followed by the text to speak.
type Command struct {
	Name string
	Args []string
}

// defaultCommands are tried in order when no command is configured.
var defaultCommands = []Command{
	{Name: "espeak-ng", Args: []string{"-v", "cmn", "-s", "150"}},
	{Name: "espeak", Args: []string{"-v", "zh", "-s", "150"}},
	{Name: "say", Args: []string{"-v", "Ting-Ting", "-r", "170"}},
}

// CommandSpeaker speaks by running a command.
type CommandSpeaker struct {
	cmd   Command
	found bool
}

// New returns a speaker for the configured command line, or the first
// default command found on PATH when command is empty.
func New(command string) *CommandSpeaker {
	return newSpeaker(command, exec.LookPath)
}

func newSpeaker(command string, lookPath func(string) (string, error)) *CommandSpeaker {
	s := &CommandSpeaker{}
	if fields := strings.Fields(command); len(fields) > 0 {
		s.cmd = Command{Name: fields[0], Args: fields[1:]}
		_, err := lookPath(s.cmd.Name)
		s.found = err == nil
		return s
	}
	for _, c := range defaultCommands {
		if _, err := lookPath(c.Name); err == nil {
			s.cmd = c
			s.found = true
			break
		}
	}
	return s
}

// Available reports whether a command was found.
func (s *CommandSpeaker) Available() bool {
	return s.found
}

// Name returns the resolved command name, or "" when none was found.
func (s *CommandSpeaker) Name() string {
	if !s.found {
		return ""
	}
	return s.cmd.Name
}

// Speak runs the command and waits for it to finish.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	if !s.found {
		return fmt.Errorf("%w: no text-to-speech command found", ErrUnavailable)
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	args := append(append([]string(nil), s.cmd.Args...), text)
	cmd := exec.CommandContext(ctx, s.cmd.Name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s: %w: %s", ErrUnavailable, s.cmd.Name, err, msg)
		}
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, s.cmd.Name, err)
	}
	return nil
}
