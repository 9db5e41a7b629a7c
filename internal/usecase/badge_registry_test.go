package usecase

import (
	"context"
	"testing"

	"github.com/productlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeRegistry_AddGet(t *testing.T) {
	registry := NewBadgeRegistry(0)
	badge := RenderBadge(badgeRecord())
	registry.Add(badge)
	registry.Add(badge)

	got, err := registry.Get(badge.ID)
	require.NoError(t, err)
	assert.Same(t, badge, got)
	assert.Equal(t, 1, registry.Len())

	_, err = registry.Get("missing")
	assert.ErrorIs(t, err, ErrBadgeNotFound)
}

func TestBadgeRegistry_EvictsOldest(t *testing.T) {
	registry := NewBadgeRegistry(2)
	first := RenderBadge(badgeRecord())
	second := RenderBadge(badgeRecord())
	third := RenderBadge(badgeRecord())

	registry.Add(first)
	registry.Add(second)
	registry.Add(third)

	assert.Equal(t, 2, registry.Len())
	_, err := registry.Get(first.ID)
	assert.ErrorIs(t, err, ErrBadgeNotFound)
	_, err = registry.Get(third.ID)
	assert.NoError(t, err)
}

func TestBadgeRegistry_Dismiss(t *testing.T) {
	registry := NewBadgeRegistry(0)
	badge := RenderBadge(badgeRecord())
	registry.Add(badge)

	require.NoError(t, registry.Dismiss(badge.ID))

	assert.True(t, badge.Dismissed())
	assert.Equal(t, 0, registry.Len())
	assert.ErrorIs(t, registry.Dismiss(badge.ID), ErrBadgeNotFound)
}

func TestBadgeRegistry_LoadOpinions(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		registry := NewBadgeRegistry(0)
		badge := RenderBadge(badgeRecord())
		registry.Add(badge)
		client := &stubOpinionsClient{result: &domain.OpinionsResult{
			DiscussionPosts: []domain.DiscussionPost{{Title: "Great ANC", Source: "Reddit"}},
		}}

		got, err := registry.LoadOpinions(context.Background(), badge.ID, client)
		require.NoError(t, err)

		state, _, disabled := got.ActionState()
		assert.Equal(t, OpinionsLoaded, state)
		assert.False(t, disabled)
		assert.Equal(t, []string{badge.Record.Title}, client.titles)
	})

	t.Run("failed keeps badge for retry", func(t *testing.T) {
		registry := NewBadgeRegistry(0)
		badge := RenderBadge(badgeRecord())
		registry.Add(badge)
		client := &stubOpinionsClient{err: domain.NewOpinionsFetchError("", 500, nil)}

		got, err := registry.LoadOpinions(context.Background(), badge.ID, client)
		assert.Error(t, err)
		require.NotNil(t, got)
		state, label, _ := got.ActionState()
		assert.Equal(t, OpinionsFailed, state)
		assert.Equal(t, LabelLoadFailed, label)

		client.err = nil
		client.result = &domain.OpinionsResult{}
		_, err = registry.LoadOpinions(context.Background(), badge.ID, client)
		assert.NoError(t, err)
	})

	t.Run("unknown badge", func(t *testing.T) {
		_, err := NewBadgeRegistry(0).LoadOpinions(context.Background(), "nope", &stubOpinionsClient{})
		assert.ErrorIs(t, err, ErrBadgeNotFound)
	})
}
