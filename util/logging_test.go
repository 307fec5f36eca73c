package util

import (
	"bytes"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func TestParseLogLevel(t *testing.T) {
	for in, expected := range map[string]log.Level{
		"ALL":     log.DebugLevel,
		"fine":    log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warning": log.WarnLevel,
		"SEVERE":  log.ErrorLevel,
		"off":     log.PanicLevel,
	} {
		l, ok := ParseLogLevel(in)
		if !ok || l != expected {
			t.Errorf("%s: expected %s, got %s (%t)", in, expected, l, ok)
		}
	}

	if l, ok := ParseLogLevel("loud"); ok || l != log.InfoLevel {
		t.Errorf("expected fallback to info, got %s (%t)", l, ok)
	}
}

func TestSetLogLevel(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	defer log.SetOutput(os.Stderr)

	var out bytes.Buffer

	SetLogLevel("loud", &out)

	if log.GetLevel() != log.InfoLevel {
		t.Errorf("expected info level, got %s", log.GetLevel())
	}

	if out.Len() == 0 {
		t.Error("expected a warning about the level")
	}
}

func TestExtractUnknownArgs(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.IntP("port", "p", 0, "")
	flags.Bool("prime", false, "")

	args := []string{"--port", "8080", "DEBUG", "--prime"}
	if err := flags.Parse(args); err != nil {
		t.Fatal(err)
	}

	unknown := ExtractUnknownArgs(flags, args)
	if len(unknown) != 1 || unknown[0] != "DEBUG" {
		t.Errorf("expected [DEBUG], got %v", unknown)
	}
}

func TestExtractUnknownArgsShort(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.IntP("port", "p", 0, "")

	for _, args := range [][]string{{""}, {"-"}} {
		unknown := ExtractUnknownArgs(flags, args)
		if len(unknown) != 1 || unknown[0] != args[len(args)-1] {
			t.Errorf("ExtractUnknownArgs(%q) = %q", args, unknown)
		}
	}
}

func TestOverrideWith(t *testing.T) {
	var (
		port  int
		host  string
		flags = pflag.NewFlagSet("test", pflag.ContinueOnError)
	)

	flags.IntVar(&port, "port", 1, "")
	flags.StringVar(&host, "host", "a", "")

	if err := flags.Parse([]string{"--port", "8080"}); err != nil {
		t.Fatal(err)
	}

	err := OverrideWith(flags, func() error {
		port, host = 9090, "b"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if port != 8080 || host != "b" {
		t.Errorf("expected 8080 and b, got %d and %s", port, host)
	}
}
