package ai

import (
	"context"
	"testing"

	"fable/internal/domain/story"
	"fable/pkg/errors"
)

type fakeClient struct {
	name ProviderName
}

func (f *fakeClient) Name() ProviderName { return f.name }

func (f *fakeClient) GenerateResponse(_ context.Context, _ story.AIRequest) (string, error) {
	return "a fake continuation", nil
}

func (f *fakeClient) AssessStory(_ context.Context, _ string, _ int) (story.Assessment, error) {
	return NeutralAssessment(), nil
}

func (f *fakeClient) ResolveModel(tier string) string { return string(f.name) + "-" + tier }

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&fakeClient{name: ProviderNameOpenAI}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	client, err := registry.Get(ProviderNameOpenAI)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if client.Name() != ProviderNameOpenAI {
		t.Errorf("Name() = %v, want openai", client.Name())
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&fakeClient{name: ProviderNameGoogle}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	err := registry.Register(&fakeClient{name: ProviderNameGoogle})
	if !errors.Is(err, errors.ErrAlreadyExists) {
		t.Errorf("duplicate Register() error = %v, want ErrAlreadyExists", err)
	}
}

func TestRegistry_GetMissing(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get(ProviderNameAnthropic)
	if !errors.Is(err, errors.ErrProviderNotConfigured) {
		t.Errorf("Get() error = %v, want ErrProviderNotConfigured", err)
	}
}

func TestRegistry_RegisterNil(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(nil); err == nil {
		t.Error("Register(nil) should fail")
	}
}

func TestRegistry_List(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(&fakeClient{name: ProviderNameOpenAI})
	_ = registry.Register(&fakeClient{name: ProviderNameAnthropic})

	if got := len(registry.List()); got != 2 {
		t.Errorf("List() returned %d clients, want 2", got)
	}
}
