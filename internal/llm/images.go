package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"newton-gpt/internal/logbuf"
)

const defaultImageSize = "1024x1024"

const imageCheckPrompt = `Is there a request in this post to generate a new image? As an answer, write two words of your choice: YES, if there is such a request, and NO, if there is no request to generate an image in the message.
In case your answer is YES, write what size image the user wants in WxH format without any extra words (if the size is not specified by the user - write 1024x1024).
Here is the message itself:
%s`

// ImageChecker asks the completion model whether a message requests image
// generation, and which size.
type ImageChecker struct {
	client Client
	model  string
	log    *logbuf.Buffer
}

func NewImageChecker(client Client, model string, log *logbuf.Buffer) *ImageChecker {
	return &ImageChecker{client: client, model: model, log: log}
}

// Check returns whether the text asks for an image and the requested size.
// Transport errors degrade to a negative answer so the conversation falls
// through to a normal completion.
func (c *ImageChecker) Check(ctx context.Context, text string) (bool, string) {
	prompt := fmt.Sprintf(imageCheckPrompt, text)
	resp, err := c.client.Generate(ctx, c.model, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		c.log.Warnf("image check failed: %v", err)
		return false, ""
	}

	answer := strings.TrimSpace(resp.Content)
	if !strings.HasPrefix(answer, "YES") {
		return false, ""
	}
	size := strings.Trim(strings.TrimPrefix(answer, "YES"), " ,.!\n")
	if size == "" {
		size = defaultImageSize
	}
	return true, size
}

// ImageClient generates images through the completion endpoint's image API.
type ImageClient struct {
	client *openai.Client
	log    *logbuf.Buffer
}

func NewImageClient(apiKey, baseURL string, log *logbuf.Buffer) *ImageClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &ImageClient{client: openai.NewClientWithConfig(config), log: log}
}

// Generate returns URLs of generated images. Failures are logged and yield
// an empty slice; the caller decides the fallback.
func (c *ImageClient) Generate(ctx context.Context, prompt, size string, n int) []string {
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt: prompt,
		N:      n,
		Size:   size,
	})
	if err != nil {
		c.log.Warnf("image generation failed: %v", err)
		return nil
	}

	urls := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		urls = append(urls, d.URL)
	}
	c.log.Infof("generated %d image(s)", len(urls))
	return urls
}
