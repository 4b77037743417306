package llm

import "testing"

func TestClientForDefaultsToOpenAI(t *testing.T) {
	f := NewFactory("test-key", "")

	for _, model := range []string{"gpt-3.5-turbo", "gpt-4", "something-else"} {
		if _, ok := f.ClientFor(model).(*OpenAIClient); !ok {
			t.Fatalf("model %q should route to the openai client", model)
		}
	}

	// Without Yandex configured even its engine name routes to OpenAI.
	if _, ok := f.ClientFor(ModelYandex).(*OpenAIClient); !ok {
		t.Fatalf("yandexgpt without provider should fall back to openai")
	}
}

func TestClientForYandex(t *testing.T) {
	f := NewFactory("test-key", "")
	f.yandex = &YandexClient{}

	if _, ok := f.ClientFor(ModelYandex).(*YandexClient); !ok {
		t.Fatalf("yandexgpt should route to the yandex client")
	}
	if _, ok := f.ClientFor("gpt-4").(*OpenAIClient); !ok {
		t.Fatalf("gpt-4 should still route to openai")
	}
}

func TestModels(t *testing.T) {
	f := NewFactory("test-key", "")
	models := f.Models()
	if len(models) != 2 || models[0] != "gpt-3.5-turbo" || models[1] != "gpt-4" {
		t.Fatalf("unexpected base models: %v", models)
	}

	f.yandex = &YandexClient{}
	models = f.Models()
	if len(models) != 3 || models[2] != ModelYandex {
		t.Fatalf("yandex model not offered: %v", models)
	}

	// Models must hand out a copy, not the backing array.
	models[0] = "mutated"
	if f.Models()[0] != "gpt-3.5-turbo" {
		t.Fatalf("Models returned a live alias")
	}
}
