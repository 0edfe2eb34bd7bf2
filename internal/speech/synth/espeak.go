package synth

import (
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// ESpeakEngine speaks through the eSpeak/eSpeak-NG command line tool.
type ESpeakEngine struct {
	path    string
	config  Config
	current *espeakUtterance
	mutex   sync.RWMutex
}

type espeakUtterance struct {
	cmd     *exec.Cmd
	stopped bool
	paused  bool
}

func newESpeakEngine(config Config) (*ESpeakEngine, error) {
	path, err := findESpeakExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}

	if err := exec.Command(path, "--version").Run(); err != nil {
		return nil, fmt.Errorf("eSpeak test failed: %w", err)
	}

	return &ESpeakEngine{path: path, config: config}, nil
}

func findESpeakExecutable() (string, error) {
	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("eSpeak executable not found in PATH")
}

// espeakArgs maps an utterance onto eSpeak flags. Speed is words per minute
// (default 175), pitch is 0-99 (default 50), amplitude is 0-200.
func espeakArgs(config Config, u Utterance) []string {
	args := []string{}

	voice := config.Voice
	if voice == "" || voice == "default" {
		voice = strings.ToLower(u.Locale)
	}
	if voice != "" {
		args = append(args, "-v", voice)
	}

	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	args = append(args, "-s", strconv.Itoa(int(math.Round(175*rate))))

	pitch := u.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	p := int(math.Round(50 * pitch))
	if p > 99 {
		p = 99
	}
	args = append(args, "-p", strconv.Itoa(p))

	volume := config.Volume
	if volume <= 0 {
		volume = 1
	}
	args = append(args, "-a", strconv.Itoa(int(math.Round(100*volume))))

	return append(args, u.Text)
}

func (e *ESpeakEngine) Speak(u Utterance, ev Events) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.current != nil {
		return ErrBusy
	}

	cmd := exec.Command(e.path, espeakArgs(e.config, u)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start eSpeak: %w", err)
	}

	utt := &espeakUtterance{cmd: cmd}
	e.current = utt

	go func() {
		ev.start()
		err := cmd.Wait()

		e.mutex.Lock()
		if e.current == utt {
			e.current = nil
		}
		stopped := utt.stopped
		e.mutex.Unlock()

		if stopped {
			return
		}
		if err != nil {
			ev.fail(fmt.Errorf("eSpeak: %w", err))
			return
		}
		ev.end()
	}()

	return nil
}

func (e *ESpeakEngine) Stop() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	utt := e.current
	if utt == nil {
		return nil
	}
	utt.stopped = true
	e.current = nil

	if utt.cmd.Process != nil {
		if err := utt.cmd.Process.Kill(); err != nil {
			return err
		}
	}
	return nil
}

func (e *ESpeakEngine) Pause() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	utt := e.current
	if utt == nil || utt.paused {
		return nil
	}
	if err := pauseProcess(utt.cmd); err != nil {
		return err
	}
	utt.paused = true
	return nil
}

func (e *ESpeakEngine) Resume() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	utt := e.current
	if utt == nil || !utt.paused {
		return nil
	}
	if err := resumeProcess(utt.cmd); err != nil {
		return err
	}
	utt.paused = false
	return nil
}

func (e *ESpeakEngine) IsSpeaking() bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.current != nil && !e.current.paused
}

func (e *ESpeakEngine) Voices() ([]string, error) {
	output, err := exec.Command(e.path, "--voices").Output()
	if err != nil {
		return nil, err
	}
	return parseESpeakVoices(string(output)), nil
}

func parseESpeakVoices(output string) []string {
	lines := strings.Split(output, "\n")
	voices := make([]string, 0)

	for i, line := range lines {
		// header
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}

		// Pty Language Age/Gender VoiceName File Other Languages
		fields := strings.Fields(line)
		if len(fields) >= 4 {
			voices = append(voices, fields[3])
		}
	}

	return voices
}
