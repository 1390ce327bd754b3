package source

import (
	"reflect"
	"testing"

	"TweetCleaner/internal/config"
	"TweetCleaner/internal/infrastructure/mock"
	"TweetCleaner/internal/infrastructure/xapi"
)

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(mock.NewSource(nil))
	reg.Register(xapi.NewClient(config.XConfig{}, nil, nil))

	if got := reg.Names(); !reflect.DeepEqual(got, []string{"mock", "x"}) {
		t.Fatalf("unexpected names: %v", got)
	}

	src, err := reg.Resolve("mock")
	if err != nil || src.Name() != "mock" {
		t.Fatalf("Resolve(mock) = %v, %v", src, err)
	}

	if _, err := reg.Resolve("mastodon"); err == nil {
		t.Fatalf("expected error for unknown source")
	}

	var zero Registry
	zero.Register(mock.NewSource(nil))
	if _, err := zero.Resolve("mock"); err != nil {
		t.Fatalf("zero registry should accept registrations: %v", err)
	}
}
