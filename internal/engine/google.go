package engine

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate/apiv3"
	"cloud.google.com/go/translate/apiv3/translatepb"
	"google.golang.org/api/option"
)

// GoogleConfig configures the Cloud Translation v3 engine.
type GoogleConfig struct {
	Project     string
	Location    string
	Credentials string
	// Glossaries maps a target language to the glossary ID to apply when
	// translating into it.
	Glossaries map[string]string
}

// Google translates through the Cloud Translation v3 API, applying a
// per-language glossary when one is configured.
type Google struct {
	cfg    GoogleConfig
	client *translate.TranslationClient
}

func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	if cfg.Project == "" {
		return nil, fmt.Errorf("google engine: project is required")
	}
	if cfg.Location == "" {
		cfg.Location = "global"
	}

	opts := []option.ClientOption{}
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}

	client, err := translate.NewTranslationClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation client: %w", err)
	}
	return &Google{cfg: cfg, client: client}, nil
}

func (g *Google) Close() error {
	return g.client.Close()
}

func (g *Google) Name() string {
	return "google-v3"
}

func (g *Google) Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := &translatepb.TranslateTextRequest{
		Parent:             g.parent(),
		Contents:           texts,
		MimeType:           "text/plain",
		SourceLanguageCode: sourceLang,
		TargetLanguageCode: targetLang,
	}

	glossary := g.cfg.Glossaries[targetLang]
	if glossary != "" {
		req.GlossaryConfig = &translatepb.TranslateTextGlossaryConfig{
			Glossary:   g.glossaryName(glossary),
			IgnoreCase: true,
		}
	}

	resp, err := g.client.TranslateText(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	translations := resp.GetTranslations()
	if glossary != "" && len(resp.GetGlossaryTranslations()) > 0 {
		translations = resp.GetGlossaryTranslations()
	}
	if len(translations) != len(texts) {
		return nil, fmt.Errorf("translation count mismatch: sent %d, got %d", len(texts), len(translations))
	}

	out := make([]string, len(translations))
	for i, tr := range translations {
		out[i] = tr.GetTranslatedText()
	}
	return out, nil
}

func (g *Google) parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", g.cfg.Project, g.cfg.Location)
}

func (g *Google) glossaryName(id string) string {
	return fmt.Sprintf("%s/glossaries/%s", g.parent(), id)
}
