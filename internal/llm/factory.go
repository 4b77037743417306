package llm

// ModelYandex is the engine name that routes to the Yandex provider. Every
// other name goes to the OpenAI-compatible endpoint as-is.
const ModelYandex = "yandexgpt"

// baseModels are the engine choices always offered by the model command.
var baseModels = []string{"gpt-3.5-turbo", "gpt-4"}

// Factory resolves the configured preference model name to a provider
// client. Selection is by exact bare model name.
type Factory struct {
	openai *OpenAIClient
	yandex *YandexClient
}

func NewFactory(apiKey, baseURL string) *Factory {
	return &Factory{openai: NewOpenAI(apiKey, baseURL)}
}

// EnableYandex adds the Yandex provider; without it the yandexgpt choice is
// neither offered nor routed.
func (f *Factory) EnableYandex(oauthToken, folderID string) error {
	ya, err := NewYandex(oauthToken, folderID)
	if err != nil {
		return err
	}
	f.yandex = ya
	return nil
}

func (f *Factory) ClientFor(model string) Client {
	if model == ModelYandex && f.yandex != nil {
		return f.yandex
	}
	return f.openai
}

// Models lists the engine names offered as command choices.
func (f *Factory) Models() []string {
	models := append([]string(nil), baseModels...)
	if f.yandex != nil {
		models = append(models, ModelYandex)
	}
	return models
}
