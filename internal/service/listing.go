package service

import (
	"context"
	"fmt"

	"github.com/voyagen/xtreamvault/internal/models"
)

// AllCategories returns every stored category.
func (p *Parser) AllCategories(ctx context.Context) ([]models.Category, error) {
	if err := p.store.Open(ctx); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer p.store.Close()

	categories, err := p.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	return categories, nil
}

// AllChannels returns every stored channel in the consumer-facing shape.
func (p *Parser) AllChannels(ctx context.Context) ([]models.LiveStream, error) {
	if err := p.store.Open(ctx); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer p.store.Close()

	channels, err := p.store.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListChannels: %w", err)
	}
	out := make([]models.LiveStream, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ch.ToLiveStream())
	}
	return out, nil
}
