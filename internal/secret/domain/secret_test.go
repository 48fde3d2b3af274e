package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpirationMetadata_IsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no expiry configured", func(t *testing.T) {
		e := ExpirationMetadata{}
		assert.False(t, e.IsExpired(now, now.Add(-365*24*time.Hour)))
	})

	t.Run("schedule expiry", func(t *testing.T) {
		e := ExpirationMetadata{ScheduleExpiration: true, ExpireAt: now.Add(-time.Minute)}
		assert.True(t, e.IsExpired(now, now))

		e.ExpireAt = now.Add(time.Minute)
		assert.False(t, e.IsExpired(now, now))

		e.ExpireAt = now
		assert.True(t, e.IsExpired(now, now), "boundary counts as expired")
	})

	t.Run("idle expiry", func(t *testing.T) {
		e := ExpirationMetadata{ExpireOnIdleTime: true, IdleTimeToExpire: time.Hour}
		assert.True(t, e.IsExpired(now, now.Add(-2*time.Hour)))
		assert.False(t, e.IsExpired(now, now.Add(-time.Minute)))
	})

	t.Run("either condition triggers", func(t *testing.T) {
		e := ExpirationMetadata{
			ScheduleExpiration: true,
			ExpireAt:           now.Add(time.Hour),
			ExpireOnIdleTime:   true,
			IdleTimeToExpire:   time.Minute,
		}
		assert.True(t, e.IsExpired(now, now.Add(-time.Hour)))
	})
}

func TestContentMetadata_TicketExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	setAt := now.Add(-10 * time.Minute)

	t.Run("expired past timeout", func(t *testing.T) {
		c := ContentMetadata{AccessTicket: "t", TicketSetAt: &setAt}
		assert.True(t, c.TicketExpired(now, 5*time.Minute))
	})

	t.Run("within timeout", func(t *testing.T) {
		c := ContentMetadata{AccessTicket: "t", TicketSetAt: &setAt}
		assert.False(t, c.TicketExpired(now, time.Hour))
	})

	t.Run("zero timeout disables expiry", func(t *testing.T) {
		c := ContentMetadata{AccessTicket: "t", TicketSetAt: &setAt}
		assert.False(t, c.TicketExpired(now, 0))
	})

	t.Run("no ticket never expires", func(t *testing.T) {
		c := ContentMetadata{}
		assert.False(t, c.TicketExpired(now, time.Minute))
	})
}

func TestContentStatus_Valid(t *testing.T) {
	assert.True(t, ContentStatusBlank.Valid())
	assert.True(t, ContentStatusUpdating.Valid())
	assert.True(t, ContentStatusReady.Valid())
	assert.False(t, ContentStatus("deleted").Valid())
}

func TestChunkName(t *testing.T) {
	assert.Equal(t, "content-abc-00000000", ChunkName("content-abc", 0))
	assert.Equal(t, "content-abc-00000042", ChunkName("content-abc", 42))
}

func TestNewContentName(t *testing.T) {
	name, err := NewContentName()
	assert.NoError(t, err)
	assert.Regexp(t, `^content-[0-9a-f-]{36}$`, name)
}
