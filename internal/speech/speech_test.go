package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eduspeak/internal/audio"
	"eduspeak/internal/audio/audiotest"
	"eduspeak/internal/speech/generate"
	"eduspeak/internal/speech/generate/generatetest"
)

func newService(gen generate.Generator, fallback bool) (*Service, *audiotest.Output) {
	out := audiotest.NewOutput()
	player := audiotest.NewPlayer(out, audiotest.Synth(time.Millisecond))
	return New(Config{Generator: gen, Player: player, Fallback: fallback}), out
}

func TestFetch_CachesPayload(t *testing.T) {
	gen := generatetest.NewStub()
	svc, _ := newService(gen, false)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		payload, err := svc.Fetch(ctx, "Cat", "Cat. Meow.")
		if err != nil || payload != gen.Payload {
			t.Fatalf("Fetch = %q, %v", payload, err)
		}
	}
	if n := gen.Calls("Cat. Meow."); n != 1 {
		t.Errorf("generator called %d times, want 1", n)
	}
	if !svc.Cached("Cat") {
		t.Error("payload not cached under the item name")
	}
}

func TestFetch_FailureNotCached(t *testing.T) {
	gen := generatetest.NewStub()
	gen.FailAll(errors.New("quota exceeded"))
	svc, _ := newService(gen, false)

	for i := 0; i < 2; i++ {
		_, err := svc.Fetch(context.Background(), "Dog", "Dog")
		var genErr *generate.GenerationError
		if !errors.As(err, &genErr) {
			t.Fatalf("expected GenerationError, got %v", err)
		}
	}
	if svc.Cached("Dog") {
		t.Error("failed generation was cached")
	}
	if n := gen.Calls("Dog"); n != 2 {
		t.Errorf("generator called %d times, want 2", n)
	}
}

func TestFetch_ConcurrentRequestsShareOneCall(t *testing.T) {
	gen := generatetest.NewStub()
	gen.Block()
	svc, _ := newService(gen, false)

	var wg sync.WaitGroup
	results := make([]string, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Fetch(context.Background(), "Lion", "Lion. Roar.")
		}(i)
	}

	if !audiotest.WaitFor(func() bool { return gen.Calls("Lion. Roar.") == 1 }) {
		t.Fatal("generator was not called")
	}
	time.Sleep(20 * time.Millisecond)
	gen.Release()
	wg.Wait()

	if n := gen.Calls("Lion. Roar."); n != 1 {
		t.Errorf("generator called %d times, want 1", n)
	}
	for i, r := range results {
		if r != gen.Payload {
			t.Errorf("result %d = %q", i, r)
		}
	}
}

func TestFetch_CancelledRequesterDoesNotFailOthers(t *testing.T) {
	gen := generatetest.NewStub()
	gen.Block()
	svc, _ := newService(gen, false)

	prefetchCtx, cancel := context.WithCancel(context.Background())
	prefetchErr := make(chan error, 1)
	go func() {
		_, err := svc.Fetch(prefetchCtx, "Bus", "Bus. Beep beep.")
		prefetchErr <- err
	}()
	if !audiotest.WaitFor(func() bool { return gen.Calls("Bus. Beep beep.") == 1 }) {
		t.Fatal("generator was not called")
	}

	selectResult := make(chan string, 1)
	go func() {
		payload, _ := svc.Fetch(context.Background(), "Bus", "Bus. Beep beep.")
		selectResult <- payload
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-prefetchErr; !errors.Is(err, context.Canceled) {
		t.Errorf("prefetch error = %v, want context.Canceled", err)
	}
	gen.Release()

	select {
	case payload := <-selectResult:
		if payload != gen.Payload {
			t.Errorf("selection payload = %q", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("selection fetch did not finish")
	}
}

func TestResolve_Fallback(t *testing.T) {
	gen := generatetest.NewStub()
	gen.FailAll(errors.New("network down"))

	svc, _ := newService(gen, true)
	src, err := svc.Resolve(context.Background(), "Red", "The color Red! So pretty!")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if src != audio.TextToSpeak("The color Red! So pretty!") {
		t.Errorf("source = %#v, want device speech", src)
	}

	svc, _ = newService(gen, false)
	if _, err := svc.Resolve(context.Background(), "Red", "The color Red! So pretty!"); err == nil {
		t.Error("expected an error without fallback")
	}
}

func TestSay_PlaysGeneratedAudio(t *testing.T) {
	gen := generatetest.NewStub()
	svc, out := newService(gen, false)

	if err := svc.Say(context.Background(), "Correct!", "Correct!"); err != nil {
		t.Fatalf("Say failed: %v", err)
	}
	voices := out.Voices()
	if len(voices) != 1 || voices[0].Frames != 4 {
		t.Errorf("voices = %v", voices)
	}
	if svc.Player().Busy() {
		t.Error("player still busy after Say returned")
	}
}
