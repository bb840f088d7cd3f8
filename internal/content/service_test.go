package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	enabled bool
	output  string
	err     error
	calls   int
}

func (f *fakeLLM) Enabled() bool { return f.enabled }

func (f *fakeLLM) GenerateText(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.output, f.err
}

func TestGenerateParsesProviderJSON(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		output: `{"titles":["I Cooked Pasta For 100 People"],
			"descriptions":["Watch me cook pasta at scale."],
			"tags":["pasta","cooking","challenge"]}`,
	}
	svc := NewService(llm)

	result, err := svc.Generate(context.Background(), Request{VideoDescription: "a chef cooking pasta"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Fallback)
	assert.Equal(t, "I Cooked Pasta For 100 People", result.BestTitle)
	assert.Equal(t, "Watch me cook pasta at scale.", result.BestDescription)
	assert.Equal(t, []string{"pasta", "cooking", "challenge"}, result.Tags)
}

func TestGenerateStripsMarkdownFence(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		output:  "```json\n{\"titles\":[\"T\"],\"descriptions\":[\"D\"],\"tags\":[\"t\"]}\n```",
	}
	svc := NewService(llm)

	result, err := svc.Generate(context.Background(), Request{VideoDescription: "anything here"})
	require.NoError(t, err)
	assert.False(t, result.Fallback)
	assert.Equal(t, "T", result.BestTitle)
}

func TestGenerateMalformedJSONFallsBack(t *testing.T) {
	llm := &fakeLLM{enabled: true, output: "sorry, I cannot produce JSON today"}
	svc := NewService(llm)

	description := "a very long description about cooking pasta for one hundred hungry guests"
	result, err := svc.Generate(context.Background(), Request{VideoDescription: description})
	require.NoError(t, err, "malformed provider output is non-fatal")
	assert.True(t, result.Fallback)
	assert.Equal(t, "a very long description about cooking pa", result.BestTitle)
	assert.Len(t, result.BestTitle, 40)
	assert.Contains(t, result.Tags, "cooking")
	assert.Contains(t, result.Tags, "pasta")
	assert.NotContains(t, result.Tags, "a", "short words are dropped")
	assert.NotContains(t, result.Tags, "for")
}

func TestGenerateProviderErrorFallsBack(t *testing.T) {
	llm := &fakeLLM{enabled: true, err: errors.New("upstream exploded")}
	svc := NewService(llm)

	result, err := svc.Generate(context.Background(), Request{VideoDescription: "short clip about dogs"})
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Equal(t, "short clip about dogs", result.BestTitle)
}

func TestGenerateWithoutProviderKeySynthesizes(t *testing.T) {
	llm := &fakeLLM{enabled: false}
	svc := NewService(llm)

	result, err := svc.Generate(context.Background(), Request{VideoDescription: "drone racing finals"})
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Zero(t, llm.calls)
	assert.Contains(t, result.Tags, "drone")
	assert.Contains(t, result.Tags, "racing")
}

func TestGenerateContentTypeFilter(t *testing.T) {
	llm := &fakeLLM{enabled: true, output: `{"titles":["A"],"descriptions":["B"],"tags":["c"]}`}
	svc := NewService(llm)

	result, err := svc.Generate(context.Background(), Request{
		VideoDescription: "a chef cooking pasta",
		ContentType:      TypeTags,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Titles, "filter strips unrequested fields")
	assert.Empty(t, result.Descriptions)
	assert.Equal(t, []string{"c"}, result.Tags)
}

func TestGenerateValidation(t *testing.T) {
	svc := NewService(&fakeLLM{})

	_, err := svc.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrMissingDescription)

	_, err = svc.Generate(context.Background(), Request{VideoDescription: "x", ContentType: "thumbnails"})
	assert.ErrorIs(t, err, ErrInvalidContentType)
}
