package gitcmd

import (
	"context"
	"strings"
	"testing"
)

func TestPipeCatFileBatch(t *testing.T) {
	runner, _ := initRepo(t)

	pipe, err := runner.Start(context.Background(), []string{"cat-file", "--batch"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer pipe.Terminate()

	missing := "0000000000000000000000000000000000000000"
	if _, err := pipe.Stdin.Write([]byte(missing + "\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	line, err := pipe.Stdout.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	if want := missing + " missing\n"; line != want {
		t.Errorf("response = %q, want %q", line, want)
	}
}

func TestPipeTerminateIdempotent(t *testing.T) {
	runner, _ := initRepo(t)

	pipe, err := runner.Start(context.Background(), []string{"cat-file", "--batch"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := pipe.Terminate(); err != nil {
		t.Errorf("Terminate() error = %v", err)
	}
	if err := pipe.Terminate(); err != nil {
		t.Errorf("second Terminate() error = %v", err)
	}
}

func TestPipeSurvivesContextCancel(t *testing.T) {
	runner, _ := initRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	pipe, err := runner.Start(ctx, []string{"cat-file", "--batch"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer pipe.Terminate()

	// the channel must keep serving after the spawning context ends
	cancel()

	missing := strings.Repeat("1", 40)
	if _, err := pipe.Stdin.Write([]byte(missing + "\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	line, err := pipe.Stdout.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	if !strings.Contains(line, "missing") {
		t.Errorf("response = %q, want a missing-object line", line)
	}
}

func TestStartCancelledContext(t *testing.T) {
	runner, _ := initRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Start(ctx, []string{"cat-file", "--batch"}); err == nil {
		t.Fatal("Start() error = nil with a cancelled context")
	}
}
