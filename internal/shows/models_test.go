package shows

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSeatLabel(t *testing.T) {
	assert.Equal(t, "A1", SeatLabel(0, 1))
	assert.Equal(t, "E7", SeatLabel(4, 7))
	assert.Equal(t, "J20", SeatLabel(9, 20))
}

func TestValidSeatLabel(t *testing.T) {
	show := &Show{SeatRows: 10, SeatsPerRow: 20}

	valid := []string{"A1", "A20", "J1", "J20", "E7"}
	for _, label := range valid {
		assert.True(t, show.ValidSeatLabel(label), "expected %s to be valid", label)
	}

	invalid := []string{
		"",     // empty
		"A",    // no seat number
		"K1",   // row beyond grid
		"A0",   // seat numbers are one-based
		"A21",  // seat beyond row
		"a1",   // lowercase row
		"1A",   // reversed
		"A1.5", // not an integer
	}
	for _, label := range invalid {
		assert.False(t, show.ValidSeatLabel(label), "expected %s to be invalid", label)
	}
}

func TestValidSeatLabelSmallGrid(t *testing.T) {
	show := &Show{SeatRows: 1, SeatsPerRow: 1}

	assert.True(t, show.ValidSeatLabel("A1"))
	assert.False(t, show.ValidSeatLabel("A2"))
	assert.False(t, show.ValidSeatLabel("B1"))
}

func TestIsBookable(t *testing.T) {
	now := time.Now()

	upcoming := &Show{Status: ShowStatusScheduled, StartsAt: now.Add(2 * time.Hour)}
	assert.True(t, upcoming.IsBookable(now))

	started := &Show{Status: ShowStatusScheduled, StartsAt: now.Add(-time.Minute)}
	assert.False(t, started.IsBookable(now))

	cancelled := &Show{Status: ShowStatusCancelled, StartsAt: now.Add(2 * time.Hour)}
	assert.False(t, cancelled.IsBookable(now))
}

func TestOwnerTokens(t *testing.T) {
	userID := uuid.New()
	linkID := uuid.New()

	assert.Equal(t, "user:"+userID.String(), UserToken(userID))
	assert.Equal(t, "link:"+linkID.String(), LinkToken(linkID))

	// The two namespaces never collide even for the same UUID
	assert.NotEqual(t, UserToken(userID), LinkToken(userID))
}
